package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/repository"
	"github.com/maxviazov/tracker-dashboard/internal/service"
	"github.com/maxviazov/tracker-dashboard/pkg/response"
)

type TrackerHandler struct {
	svc service.TrackerService
}

func NewTrackerHandler(svc service.TrackerService) *TrackerHandler { return &TrackerHandler{svc: svc} }

func (h *TrackerHandler) Register(r *gin.RouterGroup) {
	g := r.Group(TrackingPrefix)
	{
		g.POST("/create", h.create)
		g.POST("/drop", h.drop)
		g.POST("/insert/:object_name", h.insert)
		g.POST("/update/:object_name", h.update)
		g.POST("/delete/:object_name", h.delete)
		g.GET("/select", h.selectRows)
		g.GET("/monitored-names", h.monitoredNames)
		g.GET("/trackers", h.trackers)
		g.GET("/columns", h.columns)
	}
	r.GET(DashboardPrefix+"/graph", h.graph)
}

func (h *TrackerHandler) create(c *gin.Context) {
	var schema model.TrackerSchema
	if err := c.ShouldBindJSON(&schema); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	if err := h.svc.CreateTracker(c.Request.Context(), schema); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteSuccess(c)
}

type dropRequest struct {
	Name string `json:"name"`
}

func (h *TrackerHandler) drop(c *gin.Context) {
	var req dropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	if err := h.svc.DropTracker(c.Request.Context(), req.Name); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteSuccess(c)
}

func (h *TrackerHandler) insert(c *gin.Context) {
	var row model.Row
	if err := c.ShouldBindJSON(&row); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	if err := h.svc.Insert(c.Request.Context(), c.Param("object_name"), row); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteSuccess(c)
}

type updateRequest struct {
	Where  model.Row `json:"where"`
	Update model.Row `json:"update"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

func (h *TrackerHandler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	page := repository.Page{Limit: req.Limit, Offset: req.Offset}
	if _, err := h.svc.Update(c.Request.Context(), c.Param("object_name"), req.Where, req.Update, page); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteSuccess(c)
}

func (h *TrackerHandler) delete(c *gin.Context) {
	var req model.Row
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("object_name"), req[model.IDColumn]); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteSuccess(c)
}

func (h *TrackerHandler) selectRows(c *gin.Context) {
	object := c.Query("object_name")
	if object == "" {
		response.WriteError(c, missingParam("object_name"))
		return
	}
	limit, err1 := atoiDefault(c.Query("limit"))
	offset, err2 := atoiDefault(c.Query("offset"))
	if err1 != nil || err2 != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	var cols []string
	if raw := c.Query("column_data"); raw != "" {
		cols = strings.Split(raw, ",")
	}
	rows, err := h.svc.Select(c.Request.Context(), object, repository.Query{
		Columns: cols,
		Page:    repository.Page{Limit: limit, Offset: offset},
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"page_data": rows})
}

func (h *TrackerHandler) monitoredNames(c *gin.Context) {
	names, err := h.svc.MonitoredNames(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"object_names": names})
}

func (h *TrackerHandler) trackers(c *gin.Context) {
	list, err := h.svc.Trackers(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"trackers": list})
}

func (h *TrackerHandler) columns(c *gin.Context) {
	object := c.Query("object_name")
	if object == "" {
		response.WriteError(c, missingParam("object_name"))
		return
	}
	cols, err := h.svc.Columns(c.Request.Context(), object)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"columns": cols})
}

func (h *TrackerHandler) graph(c *gin.Context) {
	object := c.Query("object_name")
	if object == "" {
		response.WriteError(c, missingParam("object_name"))
		return
	}
	data, err := h.svc.Graph(c.Request.Context(), object)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, data)
}

func atoiDefault(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
