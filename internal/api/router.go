package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/gkats/catalog-api/internal/api/handler"
	"github.com/gkats/catalog-api/internal/api/middleware"
	"github.com/gkats/catalog-api/internal/core/domain"
	"github.com/gkats/catalog-api/internal/core/ports"
)

// Dependencies are the collaborators the HTTP API is built from.
type Dependencies struct {
	Users    ports.UserRepository
	Tokens   ports.TokenService
	Auth     ports.AuthService
	Products ports.ProductService
	Logger   zerolog.Logger

	// Registerer receives the HTTP request metrics. Nil disables them.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all API routes
// registered. Register and login are public; everything else requires a
// bearer token, and catalog writes additionally require ADMIN.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	if deps.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "catalog",
			Registerer: deps.Registerer,
		}))
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	productHandler := handler.NewProductHandler(deps.Products)
	gate := middleware.Auth(deps.Tokens, deps.Users)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	v1 := e.Group("/api/v1")

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, gate)

	// --- Catalog routes ---
	products := v1.Group("/products", gate)
	products.GET("", productHandler.List)
	products.GET("/price", productHandler.ByPriceRange)
	products.GET("/search", productHandler.Search)
	products.GET("/category/:category", productHandler.ByCategory)
	products.GET("/:id", productHandler.Get)
	products.POST("", productHandler.Create, adminOnly)
	products.PUT("/:id", productHandler.Update, adminOnly)
	products.DELETE("/:id", productHandler.Delete, adminOnly)

	v1.GET("/categories", productHandler.Categories, gate)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
