package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

type stubValidator struct {
	tokens map[string]*domain.OwnerClaims
}

func (s stubValidator) ValidateToken(tokenString string) (*domain.OwnerClaims, error) {
	if claims, ok := s.tokens[tokenString]; ok {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

func newGuardedHandler(validator TokenValidator, called *bool) http.Handler {
	return OwnerAuthMiddleware(validator, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}))
}

func TestProperty_MutationsRejectMissingTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests without authorization header are rejected", prop.ForAll(
		func(id string, method string) bool {
			called := false
			handler := newGuardedHandler(stubValidator{}, &called)

			req := httptest.NewRequest(method, "/api/products/"+id, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized && !called
		},
		gen.AlphaString(),
		gen.OneConstOf("POST", "PATCH", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestOwnerAuth(t *testing.T) {
	validator := stubValidator{tokens: map[string]*domain.OwnerClaims{
		"owner-token":  {Subject: "FormalDev", Role: domain.RoleOwner},
		"viewer-token": {Subject: "someone", Role: "viewer"},
	}}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCalled bool
	}{
		{"malformed header", "Token owner-token", http.StatusUnauthorized, false},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, false},
		{"wrong role", "Bearer viewer-token", http.StatusForbidden, false},
		{"owner token", "Bearer owner-token", http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := newGuardedHandler(validator, &called)

			req := httptest.NewRequest(http.MethodPost, "/api/affiliates", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if called != tt.wantCalled {
				t.Errorf("expected handler called=%v, got %v", tt.wantCalled, called)
			}
		})
	}
}

func TestOwnerAuth_StoresOwnerInContext(t *testing.T) {
	validator := stubValidator{tokens: map[string]*domain.OwnerClaims{
		"owner-token": {Subject: "FormalDev", Role: domain.RoleOwner},
	}}

	var owner string
	handler := OwnerAuthMiddleware(validator, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, _ = GetOwner(r.Context())
	}))

	req := httptest.NewRequest(http.MethodDelete, "/api/products/prd-1", nil)
	req.Header.Set("Authorization", "Bearer owner-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if owner != "FormalDev" {
		t.Errorf("expected owner FormalDev in context, got %q", owner)
	}
}
