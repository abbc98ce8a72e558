package contact_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/contact"
	"github.com/aTrapDeer/portfolio-backend/internal/mailer"
	"github.com/aTrapDeer/portfolio-backend/internal/ratelimit"
	"github.com/aTrapDeer/portfolio-backend/internal/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *fakeMailer) messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

type fixture struct {
	router *chi.Mux
	mail   *fakeMailer
	db     *gorm.DB
	token  string
}

func setup(t *testing.T) *fixture {
	t.Helper()

	database := testdb.New(t, &contact.Message{})
	log := zerolog.Nop()
	mail := &fakeMailer{}

	tokens := auth.NewTokens("test-secret", time.Hour)
	gate := auth.NewGate(tokens, "", log)
	admin := &auth.Admin{Email: "admin@example.com"}
	admin.ID = "admin-1"
	token, _, err := tokens.Issue(admin)
	require.NoError(t, err)

	limiter := ratelimit.Middleware(ratelimit.NewMemoryStore(ratelimit.DefaultPolicy()), "contact", log)

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	handler := contact.NewHandler(contact.NewService(database, mail, "owner@example.com", log), log)
	handler.RegisterRoutes(router, gate, limiter)

	return &fixture{router: router, mail: mail, db: database, token: token}
}

func (f *fixture) do(t *testing.T, method, path string, body any, authed bool, ip string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func validSubmission() map[string]string {
	return map[string]string{
		"name":    "Eve",
		"email":   "eve@example.com",
		"subject": "Hello",
		"message": "I would like to work with you.",
	}
}

func countMessages(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&contact.Message{}).Count(&n).Error)
	return n
}

func TestSubmit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setup(t)
		w := f.do(t, http.MethodPost, "/contact", validSubmission(), false, "10.0.0.1")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp["id"])
		assert.Equal(t, true, resp["notified"])

		sent := f.mail.messages()
		require.Len(t, sent, 1)
		assert.Equal(t, []string{"owner@example.com"}, sent[0].To)
		assert.Equal(t, "eve@example.com", sent[0].ReplyTo)
		assert.Equal(t, int64(1), countMessages(t, f.db))
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		f := setup(t)
		body := validSubmission()
		body["email"] = "not-an-email"
		w := f.do(t, http.MethodPost, "/contact", body, false, "10.0.0.2")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"email"`)

		assert.Empty(t, f.mail.messages())
		assert.Equal(t, int64(0), countMessages(t, f.db))
	})

	t.Run("ShortMessage", func(t *testing.T) {
		f := setup(t)
		body := validSubmission()
		body["message"] = "hi"
		w := f.do(t, http.MethodPost, "/contact", body, false, "10.0.0.3")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"message"`)
	})

	t.Run("EmailFailureStillStored", func(t *testing.T) {
		f := setup(t)
		f.mail.fail(errors.New("smtp down"))

		w := f.do(t, http.MethodPost, "/contact", validSubmission(), false, "10.0.0.4")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"notified":false`)
		assert.NotContains(t, w.Body.String(), "smtp down")
		assert.Equal(t, int64(1), countMessages(t, f.db))
	})

	t.Run("RateLimited", func(t *testing.T) {
		f := setup(t)
		for i := 0; i < 10; i++ {
			w := f.do(t, http.MethodPost, "/contact", validSubmission(), false, "10.0.0.5")
			require.Equal(t, http.StatusOK, w.Code)
		}

		w := f.do(t, http.MethodPost, "/contact", validSubmission(), false, "10.0.0.5")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, int64(10), countMessages(t, f.db))
		assert.Len(t, f.mail.messages(), 10)

		w = f.do(t, http.MethodPost, "/contact", validSubmission(), false, "10.0.0.6")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("InvalidRequestsCount", func(t *testing.T) {
		f := setup(t)
		bad := validSubmission()
		bad["email"] = "nope"
		for i := 0; i < 10; i++ {
			w := f.do(t, http.MethodPost, "/contact", bad, false, "10.0.0.7")
			require.Equal(t, http.StatusBadRequest, w.Code)
		}
		w := f.do(t, http.MethodPost, "/contact", validSubmission(), false, "10.0.0.7")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}

func TestInbox(t *testing.T) {
	f := setup(t)

	for _, subject := range []string{"first", "second"} {
		body := validSubmission()
		body["subject"] = subject
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/contact", body, false, "").Code)
		time.Sleep(2 * time.Millisecond)
	}

	t.Run("RequiresSession", func(t *testing.T) {
		for _, path := range []string{"/admin/messages", "/admin/messages/unread"} {
			w := f.do(t, http.MethodGet, path, nil, false, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		}
		w := f.do(t, http.MethodPost, "/admin/messages/reply", map[string]string{"id": "x", "replyMessage": "y"}, false, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	var messages []contact.Message
	t.Run("List_NewestFirst", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/admin/messages", nil, true, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &messages))
		require.Len(t, messages, 2)
		assert.Equal(t, "second", messages[0].Subject)
		assert.Equal(t, "first", messages[1].Subject)
		assert.False(t, messages[0].IsRead)
	})

	t.Run("UnreadCount", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/admin/messages/unread", nil, true, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"count":2}`, w.Body.String())
	})

	t.Run("Reply_NotFound", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/admin/messages/reply", map[string]string{"id": "missing", "replyMessage": "hi"}, true, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Reply_MissingFields", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/admin/messages/reply", map[string]string{"id": messages[0].ID}, true, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"replyMessage"`)
	})

	t.Run("Reply_DeliveryFailureLeavesUnmarked", func(t *testing.T) {
		f.mail.fail(errors.New("smtp down"))
		defer f.mail.fail(nil)

		w := f.do(t, http.MethodPost, "/admin/messages/reply", map[string]string{"id": messages[0].ID, "replyMessage": "Thanks!"}, true, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "smtp down")

		var stored contact.Message
		require.NoError(t, f.db.First(&stored, "id = ?", messages[0].ID).Error)
		assert.False(t, stored.Replied)
	})

	t.Run("Reply_Success", func(t *testing.T) {
		before := len(f.mail.messages())
		w := f.do(t, http.MethodPost, "/admin/messages/reply", map[string]string{"id": messages[0].ID, "replyMessage": "Thanks!"}, true, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		sent := f.mail.messages()
		require.Len(t, sent, before+1)
		reply := sent[len(sent)-1]
		assert.Equal(t, []string{"eve@example.com"}, reply.To)
		assert.Equal(t, "Re: second", reply.Subject)

		var stored contact.Message
		require.NoError(t, f.db.First(&stored, "id = ?", messages[0].ID).Error)
		assert.True(t, stored.Replied)
		assert.True(t, stored.IsRead)

		w = f.do(t, http.MethodGet, "/admin/messages/unread", nil, true, "")
		assert.JSONEq(t, `{"count":1}`, w.Body.String())
	})

	t.Run("MarkRead", func(t *testing.T) {
		w := f.do(t, http.MethodPatch, "/admin/messages/"+messages[1].ID+"/read", nil, true, "")
		require.Equal(t, http.StatusOK, w.Code)

		w = f.do(t, http.MethodGet, "/admin/messages/unread", nil, true, "")
		assert.JSONEq(t, `{"count":0}`, w.Body.String())

		w = f.do(t, http.MethodPatch, "/admin/messages/missing/read", nil, true, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		w := f.do(t, http.MethodDelete, "/admin/messages/"+messages[1].ID, nil, true, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), countMessages(t, f.db))
	})
}
