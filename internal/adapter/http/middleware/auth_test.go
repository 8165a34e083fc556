package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/infrastructure/auth"
)

func captureActor(t *testing.T, actor *domain.Actor, ok *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*actor, *ok = domain.ActorFromContext(r.Context())
	})
}

func TestAuthMiddleware(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	token, err := manager.Generate("admin-1", "Manager", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var actor domain.Actor
			var ok bool

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			AuthMiddleware(manager)(captureActor(t, &actor, &ok)).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantStatus == http.StatusOK && (!ok || actor.ID != "admin-1" || !actor.Privileged) {
				t.Fatalf("expected privileged actor in context, got %+v", actor)
			}
		})
	}
}

func TestHeaderActor(t *testing.T) {
	var actor domain.Actor
	var ok bool

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ActorIDHeader, "emp-7")
	req.Header.Set(ActorNameHeader, "Cashier")
	HeaderActor(captureActor(t, &actor, &ok)).ServeHTTP(httptest.NewRecorder(), req)

	if !ok || actor.ID != "emp-7" || actor.Name != "Cashier" || actor.Privileged {
		t.Fatalf("unexpected actor %+v", actor)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ActorIDHeader, "admin-1")
	req.Header.Set(ActorAdminHeader, "true")
	HeaderActor(captureActor(t, &actor, &ok)).ServeHTTP(httptest.NewRecorder(), req)

	if !actor.Privileged {
		t.Fatalf("expected privileged actor, got %+v", actor)
	}

	ok = false
	HeaderActor(captureActor(t, &actor, &ok)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if ok {
		t.Fatal("expected no actor without headers")
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	tests := []struct {
		name       string
		actor      *domain.Actor
		role       domain.Role
		wantStatus int
	}{
		{"anonymous", nil, domain.RoleEmployee, http.StatusUnauthorized},
		{"employee on employee route", &domain.Actor{ID: "e"}, domain.RoleEmployee, http.StatusOK},
		{"employee on admin route", &domain.Actor{ID: "e"}, domain.RoleAdmin, http.StatusForbidden},
		{"admin on admin route", &domain.Actor{ID: "a", Privileged: true}, domain.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.actor != nil {
				req = req.WithContext(domain.ContextWithActor(req.Context(), *tt.actor))
			}
			rr := httptest.NewRecorder()

			RequireRole(tt.role)(next).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}
