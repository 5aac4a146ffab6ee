package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Rajini967/CRM/internal/db"
	"github.com/Rajini967/CRM/internal/mailer"
	"github.com/Rajini967/CRM/internal/secrets"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockStore is a testify mock for the handlers' Store interface
type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetEmailAccount(ctx context.Context, id uuid.UUID) (db.EmailAccount, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.EmailAccount), args.Error(1)
}

func (m *mockStore) ListEmailAccounts(ctx context.Context) ([]db.EmailAccount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]db.EmailAccount), args.Error(1)
}

func (m *mockStore) GetEmailTemplate(ctx context.Context, id uuid.UUID) (db.EmailTemplate, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.EmailTemplate), args.Error(1)
}

func (m *mockStore) ListEmailTemplates(ctx context.Context) ([]db.EmailTemplate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]db.EmailTemplate), args.Error(1)
}

func (m *mockStore) CreateEmailLog(ctx context.Context, arg db.CreateEmailLogParams) (db.EmailLog, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.EmailLog), args.Error(1)
}

func (m *mockStore) ListRecentEmailLogs(ctx context.Context, limit int32) ([]db.EmailLog, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]db.EmailLog), args.Error(1)
}

// stubTransport records sent messages and fails for configured addresses
type stubTransport struct {
	sent    []*mailer.Message
	failFor map[string]error
}

func (t *stubTransport) Send(ctx context.Context, msg *mailer.Message) error {
	if err, ok := t.failFor[msg.To]; ok {
		return err
	}
	t.sent = append(t.sent, msg)
	return nil
}

func smtpAccount(id uuid.UUID) db.EmailAccount {
	return db.EmailAccount{
		ID:                    id,
		Name:                  "Sales",
		FromName:              "Sales Team",
		FromEmail:             "sales@example.com",
		Provider:              "smtp",
		SmtpHost:              pgtype.Text{String: "smtp.example.com", Valid: true},
		SmtpPort:              pgtype.Int4{Int32: 587, Valid: true},
		SmtpUsername:          pgtype.Text{String: "sales@example.com", Valid: true},
		SmtpPasswordEncrypted: pgtype.Text{String: "encrypted", Valid: true},
		Active:                true,
	}
}

func newBulkEmailRouter(store Store, transport mailer.Transport) *gin.Engine {
	common := NewCommonServices(
		store,
		func(ciphertext string) (string, error) { return "decrypted", nil },
		func(account db.EmailAccount, decrypt secrets.Decryptor) (mailer.Transport, error) {
			return transport, nil
		},
		mailer.NopPacer{},
	)
	handler := NewBulkEmailHandler(common)

	r := gin.New()
	r.GET("/api/bulk-emails/template", handler.DownloadTemplate)
	r.POST("/api/bulk-emails/send", handler.Send)
	r.GET("/api/bulk-emails/logs", handler.ListLogs)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, filename, fileContent string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func postSend(router *gin.Engine, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/bulk-emails/send", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSend_EndToEnd(t *testing.T) {
	accountID := uuid.New()
	store := new(mockStore)
	store.On("GetEmailAccount", mock.Anything, accountID).Return(smtpAccount(accountID), nil)
	store.On("CreateEmailLog", mock.Anything, mock.Anything).Return(db.EmailLog{}, nil)

	transport := &stubTransport{}
	router := newBulkEmailRouter(store, transport)

	body, contentType := multipartBody(t, map[string]string{
		"emailAccountId": accountID.String(),
		"subject":        "Hi {Name}",
		"bodyHtml":       "<p>Hello {Name}</p>",
	}, "recipients.csv", "Email,Name\na@x.com,Alice\nbad,Bob\nc@x.com,Carol\n")

	w := postSend(router, body, contentType)
	require.Equal(t, http.StatusOK, w.Code)

	var resp BulkSendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Success)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "row 3")
	assert.Contains(t, resp.Errors[0], `"bad"`)

	require.Len(t, transport.sent, 2)
	assert.Equal(t, "Hi Alice", transport.sent[0].Subject)
	assert.Equal(t, "Hi Carol", transport.sent[1].Subject)

	// One outcome per row, including the invalid one.
	store.AssertNumberOfCalls(t, "CreateEmailLog", 3)
}

func TestSend_RequestValidation(t *testing.T) {
	accountID := uuid.New()

	tests := []struct {
		name     string
		fields   map[string]string
		filename string
		content  string
		wantMsg  string
	}{
		{
			name:    "missing account",
			fields:  map[string]string{"subject": "s", "bodyHtml": "b"},
			wantMsg: "Email account is required",
		},
		{
			name:    "invalid account id",
			fields:  map[string]string{"emailAccountId": "not-a-uuid", "subject": "s", "bodyHtml": "b"},
			wantMsg: "Invalid email account ID format",
		},
		{
			name:    "missing file",
			fields:  map[string]string{"emailAccountId": accountID.String(), "subject": "s", "bodyHtml": "b"},
			wantMsg: "Recipient file is required",
		},
		{
			name:     "missing subject",
			fields:   map[string]string{"emailAccountId": accountID.String(), "bodyHtml": "b"},
			filename: "r.csv",
			content:  "Email\na@x.com\n",
			wantMsg:  "Subject is required",
		},
		{
			name:     "missing body",
			fields:   map[string]string{"emailAccountId": accountID.String(), "subject": "s"},
			filename: "r.csv",
			content:  "Email\na@x.com\n",
			wantMsg:  "Email body is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mockStore)
			store.On("GetEmailAccount", mock.Anything, accountID).Return(smtpAccount(accountID), nil)
			router := newBulkEmailRouter(store, &stubTransport{})

			body, contentType := multipartBody(t, tt.fields, tt.filename, tt.content)
			w := postSend(router, body, contentType)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantMsg)
		})
	}
}

func TestSend_AccountErrors(t *testing.T) {
	t.Run("account not found", func(t *testing.T) {
		accountID := uuid.New()
		store := new(mockStore)
		store.On("GetEmailAccount", mock.Anything, accountID).Return(db.EmailAccount{}, pgx.ErrNoRows)
		router := newBulkEmailRouter(store, &stubTransport{})

		body, contentType := multipartBody(t, map[string]string{
			"emailAccountId": accountID.String(),
			"subject":        "s",
			"bodyHtml":       "b",
		}, "r.csv", "Email\na@x.com\n")

		w := postSend(router, body, contentType)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("account without SMTP capability", func(t *testing.T) {
		accountID := uuid.New()
		account := smtpAccount(accountID)
		account.Provider = "resend"
		store := new(mockStore)
		store.On("GetEmailAccount", mock.Anything, accountID).Return(account, nil)
		router := newBulkEmailRouter(store, &stubTransport{})

		body, contentType := multipartBody(t, map[string]string{
			"emailAccountId": accountID.String(),
			"subject":        "s",
			"bodyHtml":       "b",
		}, "r.csv", "Email\na@x.com\n")

		w := postSend(router, body, contentType)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "does not support SMTP")
	})
}

func TestSend_SpreadsheetErrors(t *testing.T) {
	accountID := uuid.New()

	tests := []struct {
		name    string
		content string
	}{
		{name: "no email column", content: "Name,Phone\nAlice,123\n"},
		{name: "no data rows", content: "Email,Name\n"},
		{name: "malformed csv", content: "Email\n\"broken\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mockStore)
			store.On("GetEmailAccount", mock.Anything, accountID).Return(smtpAccount(accountID), nil)
			router := newBulkEmailRouter(store, &stubTransport{})

			body, contentType := multipartBody(t, map[string]string{
				"emailAccountId": accountID.String(),
				"subject":        "s",
				"bodyHtml":       "b",
			}, "r.csv", tt.content)

			w := postSend(router, body, contentType)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSend_TemplateBehavior(t *testing.T) {
	accountID := uuid.New()
	templateID := uuid.New()

	t.Run("template supplies subject and body", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetEmailAccount", mock.Anything, accountID).Return(smtpAccount(accountID), nil)
		store.On("GetEmailTemplate", mock.Anything, templateID).Return(db.EmailTemplate{
			ID:       templateID,
			Name:     "Welcome",
			Subject:  "Welcome {Name}",
			BodyHtml: "<p>Welcome aboard, {Name}</p>",
		}, nil)
		store.On("CreateEmailLog", mock.Anything, mock.Anything).Return(db.EmailLog{}, nil)

		transport := &stubTransport{}
		router := newBulkEmailRouter(store, transport)

		body, contentType := multipartBody(t, map[string]string{
			"emailAccountId": accountID.String(),
			"templateId":     templateID.String(),
		}, "r.csv", "Email,Name\na@x.com,Alice\n")

		w := postSend(router, body, contentType)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, transport.sent, 1)
		assert.Equal(t, "Welcome Alice", transport.sent[0].Subject)
		assert.Equal(t, "<p>Welcome aboard, Alice</p>", transport.sent[0].HTMLBody)
	})

	t.Run("manual fields win over template", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetEmailAccount", mock.Anything, accountID).Return(smtpAccount(accountID), nil)
		store.On("GetEmailTemplate", mock.Anything, templateID).Return(db.EmailTemplate{
			ID:       templateID,
			Subject:  "Template subject",
			BodyHtml: "<p>Template body</p>",
		}, nil)
		store.On("CreateEmailLog", mock.Anything, mock.Anything).Return(db.EmailLog{}, nil)

		transport := &stubTransport{}
		router := newBulkEmailRouter(store, transport)

		body, contentType := multipartBody(t, map[string]string{
			"emailAccountId": accountID.String(),
			"templateId":     templateID.String(),
			"subject":        "Edited subject",
			"bodyHtml":       "<p>Edited body</p>",
		}, "r.csv", "Email\na@x.com\n")

		w := postSend(router, body, contentType)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, transport.sent, 1)
		assert.Equal(t, "Edited subject", transport.sent[0].Subject)
	})

	t.Run("dangling template id degrades to no template", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetEmailAccount", mock.Anything, accountID).Return(smtpAccount(accountID), nil)
		store.On("GetEmailTemplate", mock.Anything, templateID).Return(db.EmailTemplate{}, pgx.ErrNoRows)
		store.On("CreateEmailLog", mock.Anything, mock.Anything).Return(db.EmailLog{}, nil)

		transport := &stubTransport{}
		router := newBulkEmailRouter(store, transport)

		body, contentType := multipartBody(t, map[string]string{
			"emailAccountId": accountID.String(),
			"templateId":     templateID.String(),
			"subject":        "s",
			"bodyHtml":       "b",
		}, "r.csv", "Email\na@x.com\n")

		w := postSend(router, body, contentType)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, transport.sent, 1)
	})
}

func TestSend_TransportFailuresReported(t *testing.T) {
	accountID := uuid.New()
	store := new(mockStore)
	store.On("GetEmailAccount", mock.Anything, accountID).Return(smtpAccount(accountID), nil)
	store.On("CreateEmailLog", mock.Anything, mock.Anything).Return(db.EmailLog{}, nil)

	transport := &stubTransport{failFor: map[string]error{
		"b@x.com": assert.AnError,
	}}
	router := newBulkEmailRouter(store, transport)

	body, contentType := multipartBody(t, map[string]string{
		"emailAccountId": accountID.String(),
		"subject":        "s",
		"bodyHtml":       "b",
	}, "r.csv", "Email\na@x.com\nb@x.com\nc@x.com\n")

	w := postSend(router, body, contentType)
	require.Equal(t, http.StatusOK, w.Code)

	var resp BulkSendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Success)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "b@x.com")
}

func TestSend_LoggingFailuresDoNotAffectResult(t *testing.T) {
	accountID := uuid.New()
	store := new(mockStore)
	store.On("GetEmailAccount", mock.Anything, accountID).Return(smtpAccount(accountID), nil)
	store.On("CreateEmailLog", mock.Anything, mock.Anything).Return(db.EmailLog{}, assert.AnError)

	transport := &stubTransport{}
	router := newBulkEmailRouter(store, transport)

	body, contentType := multipartBody(t, map[string]string{
		"emailAccountId": accountID.String(),
		"subject":        "s",
		"bodyHtml":       "b",
	}, "r.csv", "Email\na@x.com\nb@x.com\n")

	w := postSend(router, body, contentType)
	require.Equal(t, http.StatusOK, w.Code)

	var resp BulkSendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Success)
	assert.Equal(t, 0, resp.Failed)
}

func TestDownloadTemplate(t *testing.T) {
	router := newBulkEmailRouter(new(mockStore), &stubTransport{})

	req := httptest.NewRequest(http.MethodGet, "/api/bulk-emails/template", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bulk-email-template.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"NAME", "EMAIL", "MOBILE NUMBER"}, rows[0])
	assert.Len(t, rows[1], 3)
	assert.Len(t, rows[2], 3)
}

func TestListLogs(t *testing.T) {
	logID := uuid.New()
	accountID := uuid.New()

	store := new(mockStore)
	store.On("ListRecentEmailLogs", mock.Anything, int32(50)).Return([]db.EmailLog{
		{
			ID:        logID,
			AccountID: accountID,
			Recipient: "a@x.com",
			Subject:   "Hi Alice",
			Status:    "sent",
		},
	}, nil)

	router := newBulkEmailRouter(store, &stubTransport{})
	req := httptest.NewRequest(http.MethodGet, "/api/bulk-emails/logs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), logID.String())
	assert.Contains(t, w.Body.String(), "a@x.com")
}

func TestListLogs_LimitValidation(t *testing.T) {
	store := new(mockStore)
	store.On("ListRecentEmailLogs", mock.Anything, int32(200)).Return([]db.EmailLog{}, nil)
	router := newBulkEmailRouter(store, &stubTransport{})

	t.Run("limit capped at 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/bulk-emails/logs?limit=1000", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid limit rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/bulk-emails/logs?limit=abc", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
