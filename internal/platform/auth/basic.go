// Package auth guards mutating order routes with HTTP Basic credentials for a single admin account.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

// Realm is sent in the WWW-Authenticate challenge.
const Realm = "orders"

// AdminKey is the gin context key holding the authenticated login.
const AdminKey = "auth.admin"

var ErrInvalidCredentials = errors.New("invalid credentials")

// BasicAuthenticator checks credentials against one admin account whose password is kept only as a bcrypt hash.
type BasicAuthenticator struct {
	login  string
	hash   []byte
	logger *slog.Logger
}

// NewBasicAuthenticator hashes password once at startup.
func NewBasicAuthenticator(login, password string, logger *slog.Logger) (*BasicAuthenticator, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return nil, errors.New("admin login and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &BasicAuthenticator{login: login, hash: hash, logger: logger}, nil
}

// Verify reports ErrInvalidCredentials for a wrong login or password.
func (a *BasicAuthenticator) Verify(login, password string) error {
	loginMatches := subtle.ConstantTimeCompare([]byte(login), []byte(a.login)) == 1
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to compare admin password: %w", err)
	}
	if !loginMatches {
		return ErrInvalidCredentials
	}
	return nil
}

// Middleware rejects requests without valid Basic credentials with a 401 problem.
func (a *BasicAuthenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		login, password, ok := c.Request.BasicAuth()
		if !ok {
			apierrors.DefaultResponder.Unauthorized(c, Realm)
			c.Abort()
			return
		}
		if err := a.Verify(login, password); err != nil {
			if a.logger != nil {
				a.logger.WarnContext(c.Request.Context(), "rejected admin credentials",
					slog.String("path", c.Request.URL.Path),
					slog.String("error", err.Error()))
			}
			apierrors.DefaultResponder.Unauthorized(c, Realm)
			c.Abort()
			return
		}
		c.Set(AdminKey, login)
		c.Next()
	}
}
