package domain

import "time"

// AuthEventKind classifies entries of the security audit trail.
type AuthEventKind string

const (
	EventRegister     AuthEventKind = "register"
	EventLoginSuccess AuthEventKind = "login_success"
	EventLoginFailure AuthEventKind = "login_failure"
)

// AuthEvent records an identity operation for later review.
type AuthEvent struct {
	ID         string        `json:"id"`
	Kind       AuthEventKind `json:"kind"`
	Email      string        `json:"email"`
	OccurredAt time.Time     `json:"occurred_at"`
}
