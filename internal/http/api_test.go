package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"address-book/internal/auth"
	"address-book/internal/repository/sqlite"
	"address-book/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	contactRepo := sqlite.NewContactRepository(db)
	require.NoError(t, userRepo.Init(t.Context()))
	require.NoError(t, contactRepo.Init(t.Context()))

	tokens := auth.NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour, 24*time.Hour)
	users := service.NewUserService(userRepo, tokens, nil, nil, nil)
	contacts := service.NewContactService(contactRepo)

	logger := logrus.New()
	handler := NewHandler(users, contacts, tokens, db, nil, logger, Options{})

	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func signupAndLogin(t *testing.T, router *gin.Engine) (access, refresh string) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "qwerty",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@x.com",
		"password": "qwerty",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	return resp.AccessToken, resp.RefreshToken
}

func TestSignupDuplicateEmailConflict(t *testing.T) {
	router := newTestRouter(t)

	body := gin.H{"username": "alice", "email": "alice@x.com", "password": "qwerty"}
	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/signup", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignupValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "al",
		"email":    "not-an-email",
		"password": "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	router := newTestRouter(t)
	signupAndLogin(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@x.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshTokenRotationOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	_, refresh := signupAndLogin(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/auth/refresh_token", refresh, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// the superseded token is rejected on replay
	rec = doJSON(t, router, http.MethodGet, "/api/auth/refresh_token", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContactsRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/contacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/contacts", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContactCRUDFlow(t *testing.T) {
	router := newTestRouter(t)
	access, _ := signupAndLogin(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/contacts", access, gin.H{
		"first_name":   "Anna",
		"last_name":    "Berg",
		"email":        "anna@x.com",
		"phone_number": "380501234567",
		"birthday":     "1990-04-02",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/contacts/%d", created.ID), access, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// partial update touches only the email
	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/contacts/%d", created.ID), access, gin.H{
		"email": "anna.berg@x.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated struct {
		FirstName string `json:"first_name"`
		Email     string `json:"email"`
		Birthday  string `json:"birthday"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "anna.berg@x.com", updated.Email)
	assert.Equal(t, "Anna", updated.FirstName)
	assert.Equal(t, "1990-04-02", updated.Birthday)

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/contacts/%d", created.ID), access, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/contacts/%d", created.ID), access, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchTooShort(t *testing.T) {
	router := newTestRouter(t)
	access, _ := signupAndLogin(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/contacts/search/ab", access, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchNoMatchesIsNotFound(t *testing.T) {
	router := newTestRouter(t)
	access, _ := signupAndLogin(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/contacts/search/nobody", access, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBirthdaysRejectsNonPositiveDays(t *testing.T) {
	router := newTestRouter(t)
	access, _ := signupAndLogin(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/contacts/birthdays/0", access, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/contacts/birthdays/abc", access, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe(t *testing.T) {
	router := newTestRouter(t)
	access, _ := signupAndLogin(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/users/me", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "alice@x.com", me.Email)
}

func TestHealthchecker(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/healthchecker", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
