package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsEngine(origins string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORS(origins))
	engine.GET("/sessions", func(c *gin.Context) { c.Status(http.StatusOK) })
	return engine
}

func doCORS(engine *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/sessions", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCORSWildcard(t *testing.T) {
	w := doCORS(corsEngine("*"), http.MethodGet, "http://dashboard.local")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowList(t *testing.T) {
	engine := corsEngine("http://a.local, http://b.local")

	w := doCORS(engine, http.MethodGet, "http://b.local")
	assert.Equal(t, "http://b.local", w.Header().Get("Access-Control-Allow-Origin"))

	w = doCORS(engine, http.MethodGet, "http://evil.local")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMethodsMatchRoutedSurface(t *testing.T) {
	w := doCORS(corsEngine("*"), http.MethodGet, "http://dashboard.local")
	// Only GET and POST are routed; the preflight answer must not
	// advertise more.
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORSPreflight(t *testing.T) {
	w := doCORS(corsEngine("*"), http.MethodOptions, "http://dashboard.local")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
