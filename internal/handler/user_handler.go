package handler

import (
	"net/http"

	"reception/internal/middleware"
	"reception/internal/service"
	"reception/pkg/pagination"
	"reception/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.CustomUserService
}

func NewUserHandler(userService service.CustomUserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes binds registration (public) and user management (admin only).
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/register", h.Register)

	users := router.Group("/api/users", middleware.RequireAuth(), middleware.RequireAdmin())
	{
		users.GET("", h.List)
		users.GET("/:id", h.GetByID)
		users.PUT("/:id", h.Update)
		users.DELETE("/:id", h.Delete)
	}
}

// Register creates a self-service user account
// @Summary      Register
// @Description  Creates a custom user account. Validation errors come back field-keyed, all at once.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Registration Form"
// @Success      201      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Router       /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Err("Invalid request payload"))
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Redirect("Registration successful", "/login/", response.H{
		"user": user,
	}))
}

// List returns the registered users, newest first
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page      query     int  false  "Page"
// @Param        per_page  query     int  false  "Page size"
// @Success      200       {object}  map[string]interface{}
// @Router       /api/users [get]
func (h *UserHandler) List(c *gin.Context) {
	p := pagination.Parse(c)

	users, total, err := h.userService.List(c.Request.Context(), p.Offset, p.PerPage)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.H{
		"users":      users,
		"pagination": pagination.NewMeta(p, total),
	})
}

// GetByID returns one user
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.H{"user": user})
}

// Update edits a user's name and email
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "User ID"
// @Param        payload  body      service.UpdateCustomUserRequest  true  "Profile Fields"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Failure      404      {object}  map[string]interface{}
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateCustomUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Err("Invalid request payload"))
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.Param("id"), req, requestMeta(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success("User updated successfully", response.H{
		"user": user,
	}))
}

// Delete removes a user account
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	name, err := h.userService.Delete(c.Request.Context(), c.Param("id"), requestMeta(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success("User "+name+" deleted successfully", nil))
}
