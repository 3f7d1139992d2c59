package handler

import (
	"net/http"

	"reception/internal/middleware"
	"reception/internal/service"
	"reception/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes binds the shared login endpoints to the router
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	router.POST("/refresh", h.Refresh)
	router.GET("/me", middleware.RequireAuth(), h.Me)
}

// Login authenticates either identity class through the one shared endpoint
// @Summary      Login
// @Description  Authenticates an admin or custom user by email and password. Admins get a signed token pair, custom users an opaque session marker.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Err("Email and password are required"))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		// One generic message regardless of which lookup failed.
		c.JSON(http.StatusBadRequest, response.Err(service.ErrInvalidCredentials.Error()))
		return
	}

	if result.UserType == middleware.UserTypeAdmin {
		middleware.SetAdminCookies(c, result.AccessToken, result.RefreshToken)
		c.JSON(http.StatusOK, response.Redirect("Login successful", result.Redirect, response.H{
			"user_type": result.UserType,
		}))
		return
	}

	middleware.SetCustomUserCookies(c, result.CustomUser.ID.String())
	c.JSON(http.StatusOK, response.Redirect("Login successful", result.Redirect, response.H{
		"user_type": result.UserType,
		"user_data": response.H{
			"id":        result.CustomUser.ID.String(),
			"full_name": result.CustomUser.FullName,
			"email":     result.CustomUser.LoginEmail,
		},
	}))
}

// Logout ends whichever session type the discriminator indicates
// @Summary      Logout
// @Description  Blacklists the admin refresh token or drops the custom session marker, then clears cookies.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	meta := requestMeta(c)
	refreshToken, _ := c.Cookie(middleware.CookieRefresh)

	if err := h.authService.Logout(c.Request.Context(), refreshToken, meta); err != nil {
		writeError(c, err)
		return
	}

	userType, _ := c.Cookie(middleware.CookieUserType)
	if userType == middleware.UserTypeAdmin {
		middleware.ClearAdminCookies(c)
	} else {
		middleware.ClearCustomUserCookies(c)
	}

	c.JSON(http.StatusOK, response.Redirect("Logged out successfully", "/login/", nil))
}

// Refresh rotates the admin token pair
// @Summary      Refresh token
// @Description  Issues a new access and refresh token pair; the presented refresh token is revoked.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(middleware.CookieRefresh)
	if err != nil || refreshToken == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.RefreshToken == "" {
			c.JSON(http.StatusUnauthorized, response.Err("Refresh token is missing"))
			return
		}
		refreshToken = body.RefreshToken
	}

	pair, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		middleware.ClearAdminCookies(c)
		c.JSON(http.StatusUnauthorized, response.Err(err.Error()))
		return
	}

	middleware.SetAdminCookies(c, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, response.Success("Token refreshed", nil))
}

// Me returns the resolved identity for the current session
// @Summary      Current identity
// @Description  Returns the authenticated identity, admin or custom user.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	actor := middleware.GetActor(c)

	if actor.IsAdmin() {
		c.JSON(http.StatusOK, response.H{
			"user_type":    "admin",
			"id":           actor.Admin.ID.String(),
			"username":     actor.Admin.Username,
			"email":        actor.Admin.Email,
			"is_superuser": actor.Admin.IsSuperuser,
			"is_staff":     actor.Admin.IsStaff,
		})
		return
	}

	c.JSON(http.StatusOK, response.H{
		"user_type": "user",
		"id":        actor.Custom.ID.String(),
		"full_name": actor.Custom.FullName,
		"email":     actor.Custom.LoginEmail,
	})
}
