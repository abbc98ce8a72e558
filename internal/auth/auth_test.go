package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func setupRouter(t *testing.T) (*chi.Mux, *auth.Tokens) {
	t.Helper()

	database := testdb.New(t, &auth.Admin{})
	repo := auth.NewRepository(database)
	_, err := repo.Provision(context.Background(), "admin@example.com", "admin123", "Admin")
	require.NoError(t, err)

	log := zerolog.Nop()
	tokens := auth.NewTokens(secret, time.Hour)
	gate := auth.NewGate(tokens, "", log)
	handler := auth.NewHandler(auth.NewService(repo, tokens), gate, auth.CookieOptions{}, log)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	router.Post("/protected", gate.Protect(func(w http.ResponseWriter, r *http.Request, s auth.Session) {
		sess, ok := auth.SessionFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, s, sess)
		w.WriteHeader(http.StatusNoContent)
	}))
	return router, tokens
}

func login(t *testing.T, router http.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	router, _ := setupRouter(t)

	t.Run("Success_SetsCookie", func(t *testing.T) {
		w := login(t, router, "admin@example.com", "admin123")
		require.Equal(t, http.StatusOK, w.Code)

		var result map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.NotEmpty(t, result["token"])
		admin := result["admin"].(map[string]any)
		assert.Equal(t, "admin@example.com", admin["email"])
		assert.NotContains(t, admin, "passwordHash")
		assert.NotContains(t, admin, "PasswordHash")

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.DefaultCookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, result["token"], cookies[0].Value)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		w := login(t, router, "admin@example.com", "nope")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid email or password")
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		w := login(t, router, "ghost@example.com", "admin123")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid email or password")
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		w := login(t, router, "not-an-email", "admin123")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "email")
	})

	t.Run("MalformedBody", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGate(t *testing.T) {
	router, tokens := setupRouter(t)

	w := login(t, router, "admin@example.com", "admin123")
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	t.Run("NoCredential", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Unauthorized")
	})

	t.Run("BearerToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+result.Token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: auth.DefaultCookieName, Value: result.Token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("StaleCookie_FallsBackToBearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: auth.DefaultCookieName, Value: "stale.session.token"})
		req.Header.Set("Authorization", "Bearer "+result.Token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("StaleCookie_NoBearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: auth.DefaultCookieName, Value: "stale.session.token"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set("Authorization", "Token "+result.Token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := auth.NewTokens("other-secret", time.Hour)
		forged, _, err := other.Issue(&auth.Admin{Email: "x@example.com"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := auth.NewTokens(secret, -time.Minute)
		admin := &auth.Admin{Email: "admin@example.com"}
		admin.ID = "admin-id"
		token, _, err := expired.Issue(admin)
		require.NoError(t, err)

		_, err = tokens.Parse(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("Session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req.Header.Set("Authorization", "Bearer "+result.Token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var session auth.Session
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, "admin@example.com", session.Email)
		assert.NotEmpty(t, session.AdminID)
	})

	t.Run("Logout_ClearsCookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Empty(t, cookies[0].Value)
		assert.Less(t, cookies[0].MaxAge, 0)
	})
}

func TestProvision_ResetsPassword(t *testing.T) {
	ctx := context.Background()
	repo := auth.NewRepository(testdb.New(t, &auth.Admin{}))

	first, err := repo.Provision(ctx, "admin@example.com", "old-password", "Admin")
	require.NoError(t, err)
	second, err := repo.Provision(ctx, "admin@example.com", "new-password", "Owner")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	stored, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, stored.CheckPassword("new-password"))
	assert.False(t, stored.CheckPassword("old-password"))
	assert.Equal(t, "Owner", stored.Name)
}
