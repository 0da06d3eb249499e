package v1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-tasks-admin/internal/admin"
	v1 "github.com/adanyl0v/go-tasks-admin/internal/delivery/http/v1"
	"github.com/adanyl0v/go-tasks-admin/internal/resources"
	"github.com/adanyl0v/go-tasks-admin/internal/services"
)

const (
	adminUsername = "admin"
	adminPassword = "s3cret-password"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := argon2id.CreateHash(adminPassword, &argon2id.Params{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	require.NoError(t, err)

	logger := zerolog.Nop()
	authService := services.NewAuthService(logger, adminUsername, hash,
		"test", []byte("signing-key"), time.Minute)

	registry := admin.NewRegistry()
	require.NoError(t, admin.RegisterAll(registry,
		resources.NewTaskResource(services.NewMemoryTaskService(logger)),
	))
	registry.Seal()

	router := gin.New()
	v1.RegisterRoutes(router, v1.New(logger, authService, registry))

	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login() {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/admin/auth/login",
		`{"username":"`+adminUsername+`","password":"`+adminPassword+`"}`)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(s.t, resp.AccessToken)
	s.token = resp.AccessToken
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResourcesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/admin/resources", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.token = "garbage"
	rec = s.do(http.MethodGet, "/admin/resources/task", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/admin/auth/login", `{"username":"admin","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/admin/auth/login", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginSetsCookie(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/admin/auth/login",
		`{"username":"`+adminUsername+`","password":"`+adminPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "access_token", cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/admin/resources", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIndexListsRegisteredResources(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.do(http.MethodGet, "/admin/resources", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Resources []struct {
			Name   string `json:"name"`
			Fields []struct {
				Name string `json:"name"`
			} `json:"fields"`
		} `json:"resources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Resources, 1)
	assert.Equal(t, "task", resp.Resources[0].Name)
	assert.Len(t, resp.Resources[0].Fields, 5)
}

func TestUnknownResource(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.do(http.MethodGet, "/admin/resources/user", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.do(http.MethodPost, "/admin/resources/task", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	assert.Equal(t, false, created["completed"])
	assert.Equal(t, map[string]any{}, created["payload"])
	id := created["id"].(string)

	rec = s.do(http.MethodPatch, "/admin/resources/task/"+id,
		`{"completed":true,"payload":{"a":1,"b":[2,3]}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/admin/resources/task/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"a":1,"b":[2,3]}`, mustMarshal(t, decodeBody(t, rec)["payload"]))
	assert.Equal(t, true, decodeBody(t, rec)["completed"])

	rec = s.do(http.MethodGet, "/admin/resources/task?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody(t, rec)
	assert.EqualValues(t, 1, list["total"])
	assert.EqualValues(t, 10, list["limit"])
	assert.Len(t, list["records"], 1)

	rec = s.do(http.MethodDelete, "/admin/resources/task/"+id, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/admin/resources/task/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/admin/resources/task/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTaskValidation(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.do(http.MethodPost, "/admin/resources/task", `{"completed":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/admin/resources/task", `{"title":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/admin/resources/task", `{"completed":true}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/admin/resources/task", `{"payload":{"k":"a\u0000b"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/admin/resources/task", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decodeBody(t, rec)["total"])
}

func TestListRejectsBadQuery(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.do(http.MethodGet, "/admin/resources/task?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/admin/resources/task?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.do(http.MethodPost, "/admin/auth/logout", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "access_token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
