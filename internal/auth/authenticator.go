// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/middleware"
)

// Auth modes.
const (
	ModeNone  = "none"
	ModeToken = "token"
	ModeJWT   = "jwt"
)

// ErrUnauthorized is returned for missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

type subjectKey struct{}

// Subject is the authenticated principal attached to the request
// context.
type Subject struct {
	Username string
	Role     string
}

// SubjectFromContext returns the authenticated subject, if any.
func SubjectFromContext(ctx context.Context) (Subject, bool) {
	s, ok := ctx.Value(subjectKey{}).(Subject)
	return s, ok
}

// Authenticator applies the configured auth mode to requests.
type Authenticator struct {
	mode          string
	jwt           *JWTManager
	tokens        [][]byte
	adminUsername string
	adminHash     []byte
}

// NewAuthenticator builds an authenticator from config. In jwt mode the
// admin password may be given as a bcrypt hash or as plaintext, which is
// hashed once at startup.
func NewAuthenticator(cfg *config.SecurityConfig) (*Authenticator, error) {
	a := &Authenticator{mode: cfg.AuthMode}

	switch cfg.AuthMode {
	case ModeNone:

	case ModeToken:
		if len(cfg.APITokens) == 0 {
			return nil, fmt.Errorf("auth mode %q requires at least one api token", ModeToken)
		}
		for _, t := range cfg.APITokens {
			a.tokens = append(a.tokens, []byte(t))
		}

	case ModeJWT:
		mgr, err := NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			return nil, err
		}
		if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
			return nil, fmt.Errorf("auth mode %q requires admin credentials", ModeJWT)
		}
		hash := []byte(cfg.AdminPassword)
		if !strings.HasPrefix(cfg.AdminPassword, "$2") {
			var err error
			hash, err = bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), 12)
			if err != nil {
				return nil, fmt.Errorf("hash admin password: %w", err)
			}
		}
		a.jwt = mgr
		a.adminUsername = cfg.AdminUsername
		a.adminHash = hash

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
	}
	return a, nil
}

// Enabled reports whether requests must authenticate.
func (a *Authenticator) Enabled() bool {
	return a.mode != ModeNone
}

// Mode returns the configured mode.
func (a *Authenticator) Mode() string {
	return a.mode
}

// Login verifies admin credentials and issues a JWT. Only valid in jwt
// mode.
func (a *Authenticator) Login(username, password string) (string, error) {
	if a.mode != ModeJWT {
		return "", fmt.Errorf("login is only available in %s mode", ModeJWT)
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.adminUsername)) == 1
	passwordOK := bcrypt.CompareHashAndPassword(a.adminHash, []byte(password)) == nil
	if !usernameOK || !passwordOK {
		return "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	return a.jwt.GenerateToken(username, "admin")
}

// Middleware rejects requests without valid credentials. In none mode
// it is a pass-through.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	if a.mode == ModeNone {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := a.authenticate(r)
		if err != nil {
			logging.Ctx(r.Context()).Debug().
				Str("component", "auth").
				Str("path", r.URL.Path).
				Err(err).
				Msg("Request rejected")
			writeUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey{}, subject)))
	})
}

func (a *Authenticator) authenticate(r *http.Request) (Subject, error) {
	token, err := bearerToken(r)
	if err != nil {
		return Subject{}, err
	}

	switch a.mode {
	case ModeToken:
		provided := []byte(token)
		for _, want := range a.tokens {
			if subtle.ConstantTimeCompare(provided, want) == 1 {
				return Subject{Username: "api-token", Role: "service"}, nil
			}
		}
		return Subject{}, fmt.Errorf("%w: unknown token", ErrUnauthorized)

	case ModeJWT:
		claims, err := a.jwt.ValidateToken(token)
		if err != nil {
			return Subject{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return Subject{Username: claims.Username, Role: claims.Role}, nil

	default:
		return Subject{}, fmt.Errorf("%w: auth mode %q", ErrUnauthorized, a.mode)
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("%w: missing authorization header", ErrUnauthorized)
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", fmt.Errorf("%w: authorization header is not a bearer token", ErrUnauthorized)
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", fmt.Errorf("%w: empty bearer token", ErrUnauthorized)
	}
	return token, nil
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":      "unauthorized",
		"detail":     "valid bearer token required",
		"request_id": middleware.GetRequestID(r.Context()),
	})
}
