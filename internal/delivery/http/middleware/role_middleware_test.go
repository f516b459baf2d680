package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"medibook-backend/internal/domain/entity"
)

func requestWithRole(roleID int) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), RoleIDKey, roleID)
	return req.WithContext(ctx)
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	called := false
	handler := RequireDoctor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithRole(entity.RoleIDDoctor))

	if !called {
		t.Error("handler should run for a doctor")
	}
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	tests := []struct {
		name   string
		gate   func(http.Handler) http.Handler
		roleID int
	}{
		{"patient at admin gate", RequireAdmin, entity.RoleIDPatient},
		{"doctor at admin gate", RequireAdmin, entity.RoleIDDoctor},
		{"patient at doctor gate", RequireDoctor, entity.RoleIDPatient},
		{"admin at patient gate", RequirePatient, entity.RoleIDAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := tt.gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestWithRole(tt.roleID))

			if called {
				t.Error("handler must not run for a foreign role")
			}
			if rec.Code != http.StatusForbidden {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
			}
		})
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a verified role")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
