package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitEngine(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/upload", BodyLimitMiddleware(limit), func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusOK, "%d", len(data))
	})
	return engine
}

func TestBodyLimitPass(t *testing.T) {
	engine := newLimitEngine(16)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("hello")))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Body.String())
}

func TestBodyLimitChunked(t *testing.T) {
	engine := newLimitEngine(16)
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("chunked body"))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12", w.Body.String())
}

func TestBodyLimitDisabled(t *testing.T) {
	engine := newLimitEngine(0)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 100))))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", w.Body.String())
}
