// Package httpapi builds the gin engine and mounts every route set under /api.
package httpapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"workshop-backend/pkg/config"
	"workshop-backend/pkg/health"
	"workshop-backend/pkg/middleware"
)

const BasePath = "/api"

var Module = fx.Module("httpapi",
	fx.Provide(NewEngine),
	fx.Invoke(registerEndpoints),
)

// Routes is implemented by every service exposing endpoints under /api.
type Routes interface {
	Register(api *gin.RouterGroup)
}

// AsRoutes annotates a constructor so its result joins the routes group.
func AsRoutes(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(Routes)),
		fx.ResultTags(`group:"routes"`),
	)
}

func NewEngine(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.Tracing(),
		middleware.RequestLogger(),
		middleware.Error(),
	)
	return engine
}

type Params struct {
	fx.In
	Engine *gin.Engine
	Health health.HealthService
	Routes []Routes `group:"routes"`
}

func registerEndpoints(p Params) {
	p.Engine.GET("/healthz", p.Health.Liveness)
	p.Engine.GET("/readyz", p.Health.Readiness)
	p.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := p.Engine.Group(BasePath)
	for _, r := range p.Routes {
		r.Register(api)
	}

	api.GET("", index(p.Engine))
}

// index lists the mounted /api resources.
func index(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		seen := make(map[string]struct{})
		for _, route := range engine.Routes() {
			if !strings.HasPrefix(route.Path, BasePath+"/") {
				continue
			}
			parts := strings.SplitN(strings.TrimPrefix(route.Path, BasePath+"/"), "/", 2)
			seen[BasePath+"/"+parts[0]] = struct{}{}
		}

		endpoints := make([]string, 0, len(seen))
		for e := range seen {
			endpoints = append(endpoints, e)
		}
		sort.Strings(endpoints)

		c.JSON(http.StatusOK, gin.H{
			"message":   "API Routes",
			"endpoints": endpoints,
		})
	}
}
