package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/stockdesk/internal/shared"
)

// Operator is the signed-in console user.
type Operator struct {
	Email string
}

// Service checks credentials against the single configured operator account.
type Service struct {
	email string
	hash  []byte
}

// NewService constructs a Service for email with a bcrypt passwordHash.
func NewService(email, passwordHash string) *Service {
	return &Service{email: strings.TrimSpace(email), hash: []byte(passwordHash)}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Operator, error) {
	// The hash is compared even for unknown emails so both paths cost the same.
	err := bcrypt.CompareHashAndPassword(s.hash, []byte(password))
	if !strings.EqualFold(strings.TrimSpace(email), s.email) || err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return &Operator{Email: s.email}, nil
}
