package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gkats/catalog-api/internal/core/domain"
	"github.com/gkats/catalog-api/internal/core/ports"
	"github.com/gkats/catalog-api/internal/core/service"
)

// memUsers is an in-memory identity store with a unique email constraint.
type memUsers struct {
	mu     sync.Mutex
	byMail map[string]*domain.User
	nextID int
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byMail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byMail {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byMail[email]
	return ok, nil
}

func (m *memUsers) Save(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byMail[u.Email]; ok && existing.ID != u.ID {
		return nil, domain.ErrUserExists
	}
	clone := *u
	if clone.ID == "" {
		m.nextID++
		clone.ID = fmt.Sprintf("u%d", m.nextID)
	}
	m.byMail[clone.Email] = &clone
	out := clone
	return &out, nil
}

// catalogStub answers every query with a single product.
type catalogStub struct{}

var mug = &domain.Product{ID: "p1", Name: "Mug", Category: "Kitchen", Price: 8}

func (catalogStub) ListProducts(context.Context) ([]*domain.Product, error) {
	return []*domain.Product{mug}, nil
}
func (catalogStub) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if id != mug.ID {
		return nil, domain.ErrProductNotFound
	}
	return mug, nil
}
func (catalogStub) ProductsByCategory(context.Context, string) ([]*domain.Product, error) {
	return []*domain.Product{mug}, nil
}
func (catalogStub) ProductsByPriceRange(context.Context, float64, float64) ([]*domain.Product, error) {
	return []*domain.Product{mug}, nil
}
func (catalogStub) SearchProducts(context.Context, string) ([]*domain.Product, error) {
	return []*domain.Product{mug}, nil
}
func (catalogStub) Categories(context.Context) ([]string, error) {
	return []string{"Kitchen"}, nil
}
func (catalogStub) CreateProduct(_ context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	return &domain.Product{ID: "p2", Name: in.Name, Category: in.Category, Price: in.Price}, nil
}
func (catalogStub) UpdateProduct(_ context.Context, id string, _ domain.ProductPatch) (*domain.Product, error) {
	return &domain.Product{ID: id}, nil
}
func (catalogStub) DeleteProduct(context.Context, string) error { return nil }

var routerKey = []byte("0123456789abcdef0123456789abcdef")

func newTestRouter(t *testing.T) (*echo.Echo, *memUsers) {
	t.Helper()
	users := &memUsers{byMail: map[string]*domain.User{}}
	hasher := service.NewBcryptHasher(bcrypt.MinCost)

	tokens, err := service.NewJWTService(routerKey, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTService: %v", err)
	}
	auth, err := service.NewAuthService(users, hasher, tokens, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	admin := service.AdminAccount{Email: "admin@example.com", Password: "admin"}
	if err := service.EnsureAdmin(context.Background(), users, hasher, admin, zerolog.Nop()); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	e := NewRouter(Dependencies{
		Users:      users,
		Tokens:     tokens,
		Auth:       auth,
		Products:   catalogStub{},
		Logger:     zerolog.Nop(),
		Registerer: prometheus.NewRegistry(),
	})
	return e, users
}

func do(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func tokenFrom(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("no token in response %d: %s", rec.Code, rec.Body.String())
	}
	return resp.Token
}

func TestRouter_RegisterLoginAndBrowse(t *testing.T) {
	e, users := newTestRouter(t)

	rec := do(e, http.MethodPost, "/api/v1/auth/register", "",
		`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","password":"s3cret"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	registered := tokenFrom(t, rec)

	rec = do(e, http.MethodPost, "/api/v1/auth/register", "",
		`{"first_name":"Ada","last_name":"Again","email":"ada@example.com","password":"other"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", rec.Code)
	}
	if n := len(users.byMail); n != 2 {
		t.Fatalf("expected admin and ada only, got %d users", n)
	}

	rec = do(e, http.MethodPost, "/api/v1/auth/login", "", `{"email":"ada@example.com","password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	loggedIn := tokenFrom(t, rec)

	for _, token := range []string{registered, loggedIn} {
		rec = do(e, http.MethodGet, "/api/v1/auth/me", token, "")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"email":"ada@example.com"`) {
			t.Fatalf("me: unexpected response %d: %s", rec.Code, rec.Body.String())
		}
	}

	for _, path := range []string{
		"/api/v1/products",
		"/api/v1/products/p1",
		"/api/v1/products/category/kitchen",
		"/api/v1/products/price?min=1&max=10",
		"/api/v1/products/search?name=mug",
		"/api/v1/categories",
	} {
		if rec := do(e, http.MethodGet, path, loggedIn, ""); rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
	}

	if rec := do(e, http.MethodGet, "/api/v1/products/nope", loggedIn, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing product: expected 404, got %d", rec.Code)
	}
}

func TestRouter_LoginFailuresLookAlike(t *testing.T) {
	e, _ := newTestRouter(t)
	do(e, http.MethodPost, "/api/v1/auth/register", "", `{"email":"ada@example.com","password":"s3cret"}`)

	wrong := do(e, http.MethodPost, "/api/v1/auth/login", "", `{"email":"ada@example.com","password":"wrong"}`)
	unknown := do(e, http.MethodPost, "/api/v1/auth/login", "", `{"email":"ghost@example.com","password":"wrong"}`)

	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both, got %d and %d", wrong.Code, unknown.Code)
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", wrong.Body.String(), unknown.Body.String())
	}
}

func TestRouter_GateRejectionsLookAlike(t *testing.T) {
	e, users := newTestRouter(t)

	rec := do(e, http.MethodPost, "/api/v1/auth/register", "", `{"email":"gone@example.com","password":"pw"}`)
	orphan := tokenFrom(t, rec)
	users.mu.Lock()
	delete(users.byMail, "gone@example.com")
	users.mu.Unlock()

	missing := do(e, http.MethodGet, "/api/v1/products", "", "")
	garbage := do(e, http.MethodGet, "/api/v1/products", "garbage", "")
	stale := do(e, http.MethodGet, "/api/v1/products", orphan, "")

	for name, rec := range map[string]*httptest.ResponseRecorder{"missing": missing, "garbage": garbage, "unknown user": stale} {
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
		if rec.Body.String() != missing.Body.String() {
			t.Fatalf("%s: body %q differs from %q", name, rec.Body.String(), missing.Body.String())
		}
	}
}

func TestRouter_CatalogWritesNeedAdmin(t *testing.T) {
	e, _ := newTestRouter(t)
	product := `{"name":"Lamp","category":"Home","price":20,"quantity":1}`

	rec := do(e, http.MethodPost, "/api/v1/auth/register", "", `{"email":"ada@example.com","password":"s3cret"}`)
	user := tokenFrom(t, rec)
	if rec := do(e, http.MethodPost, "/api/v1/products", user, product); rec.Code != http.StatusForbidden {
		t.Fatalf("user create: expected 403, got %d", rec.Code)
	}
	if rec := do(e, http.MethodDelete, "/api/v1/products/p1", user, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("user delete: expected 403, got %d", rec.Code)
	}

	rec = do(e, http.MethodPost, "/api/v1/auth/login", "", `{"email":"admin@example.com","password":"admin"}`)
	admin := tokenFrom(t, rec)
	if rec := do(e, http.MethodPost, "/api/v1/products", admin, product); rec.Code != http.StatusCreated {
		t.Fatalf("admin create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodPut, "/api/v1/products/p1", admin, `{"price":25}`); rec.Code != http.StatusOK {
		t.Fatalf("admin update: expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodDelete, "/api/v1/products/p1", admin, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete: expected 204, got %d", rec.Code)
	}
}

func TestRouter_RegisterValidation(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodPost, "/api/v1/auth/register", "", `{"email":"not-an-email","password":"pw"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email must be a valid email") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
