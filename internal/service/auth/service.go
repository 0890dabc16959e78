package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/kerucko/tasklist/internal/models"
	"github.com/kerucko/tasklist/internal/utils"
)

var ErrUnauthorized = errors.New("unauthorized")

type tokenIssuer interface {
	GenerateToken(name string) (string, error)
}

// Service authenticates the single operator configured for the deployment.
type Service struct {
	operator     string
	passwordHash string
	tokens       tokenIssuer
}

func NewService(operator, passwordHash string, tokens tokenIssuer) *Service {
	return &Service{
		operator:     operator,
		passwordHash: passwordHash,
		tokens:       tokens,
	}
}

func (s *Service) Login(_ context.Context, input models.LoginRequest) (string, error) {
	nameOK := subtle.ConstantTimeCompare([]byte(input.Name), []byte(s.operator)) == 1
	// Hash check runs even on a wrong name so both failures cost the same.
	passOK := utils.CheckPasswordHash(input.Password, s.passwordHash)
	if !nameOK || !passOK {
		return "", ErrUnauthorized
	}
	return s.tokens.GenerateToken(s.operator)
}
