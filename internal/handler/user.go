package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/service"
	"github.com/maxviazov/tracker-dashboard/pkg/response"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Register(r *gin.RouterGroup) {
	g := r.Group(UserManagementPrefix)
	{
		g.POST("/create-user", h.create)
		g.POST("/delete-user", h.delete)
		g.GET("/all-users", h.list)
	}
}

func (h *UserHandler) create(c *gin.Context) {
	var u model.User
	if err := c.ShouldBindJSON(&u); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	if err := h.svc.CreateUser(c.Request.Context(), u); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteSuccess(c)
}

type deleteUserRequest struct {
	Email string `json:"email"`
}

func (h *UserHandler) delete(c *gin.Context) {
	var req deleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	if err := h.svc.DeleteUser(c.Request.Context(), req.Email); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteSuccess(c)
}

// list answers with a bare array of rows, not an envelope.
func (h *UserHandler) list(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	rows := make([]model.Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, model.Row{"name": u.Name, "email": u.Email, "is_admin": u.IsAdmin})
	}
	response.WriteData(c, http.StatusOK, rows)
}
