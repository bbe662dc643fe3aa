package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snapledger/snapledger/internal/auth"
	"github.com/snapledger/snapledger/internal/config"
	"github.com/snapledger/snapledger/internal/models"
	"github.com/snapledger/snapledger/internal/report"
	"github.com/snapledger/snapledger/internal/repository"
	"github.com/snapledger/snapledger/internal/scan"
	"github.com/snapledger/snapledger/internal/storage"
	"github.com/snapledger/snapledger/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubDetector struct {
	text string
	err  error
}

func (s *stubDetector) DetectText(ctx context.Context, image []byte) (string, error) {
	return s.text, s.err
}

func newTestServer(t *testing.T, ocrText string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()

	db, err := database.New(database.Config{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1}, logger)
	require.NoError(t, err)
	require.NoError(t, db.Init())
	t.Cleanup(func() { _ = db.Close() })

	files, err := storage.NewFileStorage(t.TempDir(), logger)
	require.NoError(t, err)

	return New(
		config.ServerConfig{MaxUploadMB: 16},
		auth.NewManager("test-secret", time.Hour),
		repository.NewUserRepository(db, logger),
		repository.NewExpenseRepository(db, logger),
		scan.NewService(&stubDetector{text: ocrText}, nil, logger),
		files,
		report.NewExcelExporter(logger),
		logger,
	)
}

func doJSON(t *testing.T, s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func registerTestUser(t *testing.T, s *Server, email string) string {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "")

	w := doJSON(t, s, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t, "")
	registerTestUser(t, s, "a@example.com")

	// Duplicate registration is rejected.
	w := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "a@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "a@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "a@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	s := newTestServer(t, "")

	w := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "a@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, "")

	w := doJSON(t, s, http.MethodGet, "/api/v1/expenses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/expenses", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScanEndpoint(t *testing.T) {
	s := newTestServer(t, "JOE'S CAFE\n2 APPLES 3.99\nTOTAL 3.99")
	token := registerTestUser(t, s, "a@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("receipt", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Receipt   models.ParsedReceipt `json:"receipt"`
		Source    string               `json:"source"`
		ImagePath string               `json:"image_path"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, scan.SourceOCR, resp.Source)
	assert.Equal(t, "JOE'S CAFE", resp.Receipt.Vendor)
	require.Len(t, resp.Receipt.Items, 1)
	assert.Equal(t, "APPLES", resp.Receipt.Items[0].Name)
	assert.NotEmpty(t, resp.ImagePath)
}

func TestScanEndpoint_RejectsBadType(t *testing.T) {
	s := newTestServer(t, "")
	token := registerTestUser(t, s, "a@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("receipt", "evil.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("MZ"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpenseLifecycle(t *testing.T) {
	s := newTestServer(t, "")
	token := registerTestUser(t, s, "a@example.com")

	w := doJSON(t, s, http.MethodPost, "/api/v1/expenses", token, gin.H{
		"vendor":   "JOE'S CAFE",
		"amount":   11.98,
		"date":     "2026-08-15",
		"category": "Dining",
		"items": []gin.H{
			{"name": "APPLES", "quantity": 2, "total_price": 7.98},
			{"name": "COFFEE", "total_price": 4.00},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Expense
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	require.Len(t, created.Items, 2)
	// Quantity defaults to 1 when omitted.
	assert.Equal(t, float64(1), created.Items[1].Quantity)

	w = doJSON(t, s, http.MethodGet, "/api/v1/expenses", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "JOE'S CAFE")

	w = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/v1/expenses/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "APPLES")

	w = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/v1/expenses/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/v1/expenses/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExpenseValidation(t *testing.T) {
	s := newTestServer(t, "")
	token := registerTestUser(t, s, "a@example.com")

	w := doJSON(t, s, http.MethodPost, "/api/v1/expenses", token, gin.H{
		"vendor": "V", "amount": 5.0, "date": "15/08/2026", "category": "Dining",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/v1/expenses", token, gin.H{
		"vendor": "V", "amount": 5.0, "date": "2026-08-15", "category": "Gambling",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpensesAreUserScoped(t *testing.T) {
	s := newTestServer(t, "")
	ownerToken := registerTestUser(t, s, "owner@example.com")
	otherToken := registerTestUser(t, s, "other@example.com")

	w := doJSON(t, s, http.MethodPost, "/api/v1/expenses", ownerToken, gin.H{
		"vendor": "V", "amount": 5.0, "date": "2026-08-15", "category": "Dining",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Expense
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/v1/expenses/%d", created.ID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/v1/expenses/%d", created.ID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t, "")
	token := registerTestUser(t, s, "a@example.com")

	for _, e := range []gin.H{
		{"vendor": "A", "amount": 10.0, "date": "2026-08-01", "category": "Dining"},
		{"vendor": "B", "amount": 30.0, "date": "2026-08-20", "category": "Groceries"},
		{"vendor": "C", "amount": 99.0, "date": "2026-07-01", "category": "Dining"},
	} {
		w := doJSON(t, s, http.MethodPost, "/api/v1/expenses", token, e)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, s, http.MethodGet, "/api/v1/dashboard?month=2026-08", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Month      string                 `json:"month"`
		Total      float64                `json:"total"`
		Categories []models.CategoryTotal `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2026-08", resp.Month)
	assert.InDelta(t, 40, resp.Total, 0.001)
	require.Len(t, resp.Categories, 2)
	assert.Equal(t, "Groceries", resp.Categories[0].Category)

	w = doJSON(t, s, http.MethodGet, "/api/v1/dashboard?month=August", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMonthlyReport(t *testing.T) {
	s := newTestServer(t, "")
	token := registerTestUser(t, s, "a@example.com")

	w := doJSON(t, s, http.MethodPost, "/api/v1/expenses", token, gin.H{
		"vendor": "A", "amount": 10.0, "date": "2026-08-01", "category": "Dining",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/reports/monthly?month=2026-08", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "expenses-2026-08.xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestCategories(t *testing.T) {
	s := newTestServer(t, "")
	token := registerTestUser(t, s, "a@example.com")

	w := doJSON(t, s, http.MethodGet, "/api/v1/categories", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Groceries")
}
