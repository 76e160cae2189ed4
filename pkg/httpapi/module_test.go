package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"workshop-backend/pkg/config"
	"workshop-backend/pkg/health"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
	gin.SetMode(gin.TestMode)
}

type fakeRoutes struct {
	prefix string
}

func (f fakeRoutes) Register(api *gin.RouterGroup) {
	api.GET(f.prefix, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.GET(f.prefix+"/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
}

func TestRegisterEndpoints(t *testing.T) {
	engine := NewEngine(&config.Config{})
	registerEndpoints(Params{
		Engine: engine,
		Health: health.ProvideHealth(health.HealthParams{}),
		Routes: []Routes{fakeRoutes{"/vehicle-brands"}, fakeRoutes{"/jobs"}},
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Message   string   `json:"message"`
		Endpoints []string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, []string{"/api/jobs", "/api/vehicle-brands"}, body.Endpoints)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "go_goroutines")
}
