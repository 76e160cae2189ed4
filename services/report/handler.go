package report

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"workshop-backend/pkg/config"
	"workshop-backend/pkg/db/pagination"
	"workshop-backend/pkg/errutil"
	"workshop-backend/pkg/middleware"
)

type Handler struct {
	svc          *Service
	defaultOwner string
}

func NewHandler(svc *Service, cfg *config.Config) *Handler {
	return &Handler{svc: svc, defaultOwner: cfg.Auth.DefaultOwnerID}
}

func (h *Handler) Register(api *gin.RouterGroup) {
	g := api.Group("", middleware.Owner(h.defaultOwner))

	g.POST("/reports/work-orders", h.SubmitWorkOrderReport)
	g.GET("/jobs", h.ListJobs)
	g.GET("/jobs/:jobId/status", h.GetJobStatus)
	g.GET("/jobs/:jobId/download", h.DownloadReport)

	// paths used by existing clients
	g.POST("/reports/workorders", h.SubmitWorkOrderReport)
	g.GET("/reports/jobs", h.ListJobs)
	g.GET("/reports/jobs/:jobId/status", h.GetJobStatus)
	g.GET("/reports/jobs/:jobId/download", h.DownloadReport)
}

func (h *Handler) SubmitWorkOrderReport(c *gin.Context) {
	var params WorkOrderReportParams
	if err := c.ShouldBindJSON(&params); err != nil {
		if verr := params.Validate(); verr != nil {
			_ = c.Error(verr)
			return
		}
		_ = c.Error(errutil.ValidationFailed("Invalid request body", err))
		return
	}

	jobID, err := h.svc.Submit(c.Request.Context(), params, middleware.OwnerID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Report generation initiated",
		"data":    gin.H{"jobId": jobID},
	})
}

func (h *Handler) GetJobStatus(c *gin.Context) {
	summary, err := h.svc.GetStatus(c.Request.Context(), c.Param("jobId"), middleware.OwnerID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summary,
	})
}

func (h *Handler) ListJobs(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		_ = c.Error(errutil.ValidationFailed("page and limit must be integers", err))
		return
	}

	list, err := h.svc.List(c.Request.Context(), middleware.OwnerID(c), page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    list,
	})
}

func (h *Handler) DownloadReport(c *gin.Context) {
	dl, err := h.svc.Download(c.Request.Context(), c.Param("jobId"), middleware.OwnerID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer dl.File.Close()

	c.DataFromReader(http.StatusOK, dl.Size, "text/csv", dl.File, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, dl.FileName),
	})
}
