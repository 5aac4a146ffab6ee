package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rajini967/CRM/internal/db"
	"github.com/Rajini967/CRM/internal/mailer"
	"github.com/Rajini967/CRM/internal/secrets"
)

func newEmailAccountRouter(store Store, transport mailer.Transport) *gin.Engine {
	common := NewCommonServices(
		store,
		func(ciphertext string) (string, error) { return "decrypted", nil },
		func(account db.EmailAccount, decrypt secrets.Decryptor) (mailer.Transport, error) {
			return transport, nil
		},
		mailer.NopPacer{},
	)
	handler := NewEmailAccountHandler(common)

	r := gin.New()
	r.GET("/api/email-accounts", handler.ListEmailAccounts)
	r.GET("/api/email-accounts/:account_id", handler.GetEmailAccount)
	r.POST("/api/email-accounts/:account_id/test", handler.TestSend)
	return r
}

func TestListEmailAccounts(t *testing.T) {
	accountID := uuid.New()
	store := new(mockStore)
	store.On("ListEmailAccounts", mock.Anything).Return([]db.EmailAccount{smtpAccount(accountID)}, nil)

	router := newEmailAccountRouter(store, &stubTransport{})
	req := httptest.NewRequest(http.MethodGet, "/api/email-accounts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), accountID.String())
	assert.Contains(t, w.Body.String(), `"can_bulk_send":true`)
	// Credentials must never leak into responses.
	assert.NotContains(t, w.Body.String(), "encrypted")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestGetEmailAccount(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		accountID := uuid.New()
		store := new(mockStore)
		store.On("GetEmailAccount", mock.Anything, accountID).Return(smtpAccount(accountID), nil)

		router := newEmailAccountRouter(store, &stubTransport{})
		req := httptest.NewRequest(http.MethodGet, "/api/email-accounts/"+accountID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp EmailAccountResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, accountID.String(), resp.ID)
		assert.Equal(t, "email_account", resp.Object)
		assert.Equal(t, "smtp", resp.Provider)
		assert.True(t, resp.CanBulk)
	})

	t.Run("invalid id", func(t *testing.T) {
		router := newEmailAccountRouter(new(mockStore), &stubTransport{})
		req := httptest.NewRequest(http.MethodGet, "/api/email-accounts/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		accountID := uuid.New()
		store := new(mockStore)
		store.On("GetEmailAccount", mock.Anything, accountID).Return(db.EmailAccount{}, pgx.ErrNoRows)

		router := newEmailAccountRouter(store, &stubTransport{})
		req := httptest.NewRequest(http.MethodGet, "/api/email-accounts/"+accountID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTestSend(t *testing.T) {
	accountID := uuid.New()

	t.Run("delivers through the account transport", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetEmailAccount", mock.Anything, accountID).Return(smtpAccount(accountID), nil)

		transport := &stubTransport{}
		router := newEmailAccountRouter(store, transport)

		req := httptest.NewRequest(http.MethodPost, "/api/email-accounts/"+accountID.String()+"/test",
			strings.NewReader(`{"to":"dest@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, transport.sent, 1)
		assert.Equal(t, "dest@example.com", transport.sent[0].To)
	})

	t.Run("rejects invalid destination", func(t *testing.T) {
		router := newEmailAccountRouter(new(mockStore), &stubTransport{})

		req := httptest.NewRequest(http.MethodPost, "/api/email-accounts/"+accountID.String()+"/test",
			strings.NewReader(`{"to":"not-an-address"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps delivery failure to 502", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetEmailAccount", mock.Anything, accountID).Return(smtpAccount(accountID), nil)

		transport := &stubTransport{failFor: map[string]error{"dest@example.com": assert.AnError}}
		router := newEmailAccountRouter(store, transport)

		req := httptest.NewRequest(http.MethodPost, "/api/email-accounts/"+accountID.String()+"/test",
			strings.NewReader(`{"to":"dest@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
