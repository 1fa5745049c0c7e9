package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petlink/pkg/web/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeToStatus(t *testing.T) {
	tests := []struct {
		code   int
		status int
	}{
		{errors.CodeOK, http.StatusOK},
		{errors.CodeInvalidParams, http.StatusBadRequest},
		{errors.CodePaymentRequired, http.StatusPaymentRequired},
		{errors.CodeNotFound, http.StatusNotFound},
		{errors.CodeConflict, http.StatusConflict},
		{errors.CodeServiceUnavailable, http.StatusServiceUnavailable},
		{12, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, errors.CodeToStatus(tt.code), "code %d", tt.code)
	}
}

func TestServerRoutes(t *testing.T) {
	s, err := NewServer(&Config{Mode: gin.TestMode}, nil)
	require.NoError(t, err)

	s.Router().GET("/ok", func(c *gin.Context) { Success(c, gin.H{"n": 1}) })
	s.Router().GET("/bad", func(c *gin.Context) {
		Error(c, errors.CodeConflict, "version mismatch")
	})

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"message":"ok","data":{"n":1}}`, w.Body.String())

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40901`)
}

func TestGetQueryInt(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 10},
		{"?n=abc", 10},
		{"?n=0", 1},
		{"?n=25", 25},
		{"?n=500", 50},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
		assert.Equal(t, tt.want, GetQueryInt(c, "n", 10, 1, 50), tt.query)
	}
}

func TestConfigValidate(t *testing.T) {
	_, err := NewServer(&Config{Port: 70000}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
