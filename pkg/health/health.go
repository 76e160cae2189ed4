package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"workshop-backend/pkg/storage"
)

var Module = fx.Module("health", fx.Provide(ProvideHealth))

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	pingTimeout     = 2 * time.Second
)

type Dependency struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Health struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Deps    []Dependency `json:"deps,omitempty"`
}

type HealthService interface {
	Liveness(c *gin.Context)
	Readiness(c *gin.Context)
}

type health struct {
	db    *gorm.DB
	paths *storage.Paths
}

type HealthParams struct {
	fx.In
	DB    *gorm.DB       `optional:"true"`
	Paths *storage.Paths `optional:"true"`
}

func ProvideHealth(p HealthParams) HealthService {
	return &health{
		db:    p.DB,
		paths: p.Paths,
	}
}

func (h *health) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, &Health{
		Status:  statusHealthy,
		Message: "OK",
	})
}

// Readiness pings the database and checks the reports directory. Any failing dependency
// turns the response into a 503.
func (h *health) Readiness(c *gin.Context) {
	this := &Health{
		Status:  statusHealthy,
		Message: "OK",
	}

	deps := make([]Dependency, 0, 2)
	if h.db != nil {
		deps = append(deps, h.checkDB(c.Request.Context()))
	}
	if h.paths != nil {
		deps = append(deps, h.checkStorage())
	}

	code := http.StatusOK
	for _, dep := range deps {
		if dep.Status != statusHealthy {
			this.Status = statusUnhealthy
			this.Message = "dependency unavailable"
			code = http.StatusServiceUnavailable
		}
	}
	this.Deps = deps

	c.JSON(code, this)
}

func (h *health) checkDB(ctx context.Context) Dependency {
	dep := Dependency{
		Name:    h.db.Name(),
		Status:  statusHealthy,
		Message: "OK",
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		dep.Status = statusUnhealthy
		dep.Message = err.Error()
		return dep
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		dep.Status = statusUnhealthy
		dep.Message = err.Error()
	}
	return dep
}

func (h *health) checkStorage() Dependency {
	dep := Dependency{
		Name:    "storage",
		Status:  statusHealthy,
		Message: "OK",
	}
	if err := h.paths.EnsureBaseDirectories(); err != nil {
		dep.Status = statusUnhealthy
		dep.Message = err.Error()
	}
	return dep
}
