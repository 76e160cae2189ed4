package catalog

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"workshop-backend/pkg/db/pagination"
	"workshop-backend/pkg/errutil"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(api *gin.RouterGroup) {
	mountCRUD(api.Group("/vehicle-brands"), h.svc.Brands, nil)
	mountCRUD(api.Group("/vehicle-models"), h.svc.Models, modelFilter)
	mountCRUD(api.Group("/vehicle-types"), h.svc.Types, nil)

	mountReadOnly(api.Group("/customers"), h.svc.Customers, nil)
	mountReadOnly(api.Group("/dealers"), h.svc.Dealers, nil)
	mountReadOnly(api.Group("/vehicle-units"), h.svc.Units, unitFilter)
}

// modelFilter supports ?brand=<Oid>.
func modelFilter(c *gin.Context) *VehicleModel {
	if brand := strings.TrimSpace(c.Query("brand")); brand != "" {
		return &VehicleModel{Brand: brand}
	}
	return nil
}

// unitFilter supports ?customer=<Oid>.
func unitFilter(c *gin.Context) *VehicleUnit {
	if customer := strings.TrimSpace(c.Query("customer")); customer != "" {
		return &VehicleUnit{Customer: customer}
	}
	return nil
}

func mountReadOnly[T any](g *gin.RouterGroup, r *Resource[T], filter func(*gin.Context) *T) {
	g.GET("", list(r, filter))
	g.GET("/:id", get(r))
}

func mountCRUD[T any](g *gin.RouterGroup, r *Resource[T], filter func(*gin.Context) *T) {
	mountReadOnly(g, r, filter)
	g.POST("", create(r))
	g.PATCH("/:id", update(r))
	g.DELETE("/:id", remove(r))
}

func list[T any](r *Resource[T], filter func(*gin.Context) *T) gin.HandlerFunc {
	return func(c *gin.Context) {
		var page pagination.Pagination
		if err := c.ShouldBindQuery(&page); err != nil {
			_ = c.Error(errutil.ValidationFailed("page and limit must be integers", err))
			return
		}

		var query *T
		if filter != nil {
			query = filter(c)
		}

		res, err := r.List(c.Request.Context(), query, page)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"data":       res.Items,
			"pagination": res.Pagination,
		})
	}
}

func get[T any](r *Resource[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := r.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": item})
	}
}

func create[T any](r *Resource[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		item := new(T)
		if err := c.ShouldBindJSON(item); err != nil {
			_ = c.Error(errutil.ValidationFailed("Invalid request body", err))
			return
		}

		created, err := r.Create(c.Request.Context(), item)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": r.Name() + " created",
			"data":    created,
		})
	}
}

func update[T any](r *Resource[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var fields map[string]any
		if err := c.ShouldBindJSON(&fields); err != nil {
			_ = c.Error(errutil.ValidationFailed("Invalid request body", err))
			return
		}

		updated, err := r.Update(c.Request.Context(), c.Param("id"), fields)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": r.Name() + " updated",
			"data":    updated,
		})
	}
}

func remove[T any](r *Resource[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := r.Delete(c.Request.Context(), c.Param("id")); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": r.Name() + " deleted",
		})
	}
}
