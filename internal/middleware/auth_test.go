package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/magolabs/aimaster/internal/auth"
	"github.com/magolabs/aimaster/internal/database"
	"github.com/magolabs/aimaster/internal/store"
)

func setupAuthMiddlewareDB(t *testing.T) (*auth.MemoryTokenStore, *store.UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return auth.NewMemoryTokenStore(), store.NewUserStore(db)
}

func TestRequireAuthNoToken(t *testing.T) {
	ts, us := setupAuthMiddlewareDB(t)

	handler := RequireAuth(ts, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/user", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	ts, us := setupAuthMiddlewareDB(t)

	handler := RequireAuth(ts, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/user", nil)
	req.Header.Set("Authorization", "bogus-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	ts, us := setupAuthMiddlewareDB(t)

	u, _ := us.Create("mago@example.com", "h")
	token, _ := ts.Create(u.ID)

	var gotAC auth.AuthContext
	handler := RequireAuth(ts, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			t.Fatal("expected AuthContext in request context")
		}
		gotAC = ac
		w.WriteHeader(http.StatusOK)
	}))

	for name, set := range map[string]func(*http.Request){
		"header": func(r *http.Request) { r.Header.Set("Authorization", token) },
		"bearer": func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
		"query":  func(r *http.Request) { r.URL.RawQuery = "token=" + token },
		"cookie": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token}) },
	} {
		req := httptest.NewRequest("GET", "/api/user", nil)
		set(req)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", name, rec.Code)
		}
		if gotAC.UserID != u.ID {
			t.Errorf("%s: user id = %d, want %d", name, gotAC.UserID, u.ID)
		}
		if gotAC.Email != "mago@example.com" {
			t.Errorf("%s: email = %q, want mago@example.com", name, gotAC.Email)
		}
	}
}

func TestRequireAuthDeletedToken(t *testing.T) {
	ts, us := setupAuthMiddlewareDB(t)

	u, _ := us.Create("adios@example.com", "h")
	token, _ := ts.Create(u.ID)
	ts.Delete(token)

	handler := RequireAuth(ts, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/user", nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
