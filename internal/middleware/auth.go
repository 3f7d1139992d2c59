package middleware

import (
	"net/http"
	"os"
	"time"

	"reception/internal/model"
	"reception/internal/repository"
	"reception/pkg/cache"
	"reception/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Session cookie names. "user_type" is the discriminator; the token pair
// belongs to admin sessions and "custom_user_id" to custom-user sessions.
const (
	CookieAccess       = "access"
	CookieRefresh      = "refresh"
	CookieUserType     = "user_type"
	CookieCustomUserID = "custom_user_id"

	UserTypeAdmin  = "admin"
	UserTypeCustom = "user"
)

const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
)

const actorKey = "actor"

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in release mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

func cookieSettings() (http.SameSite, bool) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	if os.Getenv("GIN_MODE") == "release" {
		return http.SameSiteNoneMode, true
	}
	return http.SameSiteLaxMode, false
}

// SetAdminCookies sets the signed token pair plus the discriminator as
// HttpOnly cookies.
func SetAdminCookies(c *gin.Context, accessToken, refreshToken string) {
	sameSite, secure := cookieSettings()
	c.SetSameSite(sameSite)
	c.SetCookie(CookieAccess, accessToken, int(AccessTokenTTL.Seconds()), "/", "", secure, true)
	c.SetCookie(CookieRefresh, refreshToken, int(RefreshTokenTTL.Seconds()), "/", "", secure, true)
	c.SetCookie(CookieUserType, UserTypeAdmin, int(RefreshTokenTTL.Seconds()), "/", "", secure, true)
}

// SetCustomUserCookies sets the opaque session marker plus the discriminator.
func SetCustomUserCookies(c *gin.Context, customUserID string) {
	sameSite, secure := cookieSettings()
	c.SetSameSite(sameSite)
	c.SetCookie(CookieCustomUserID, customUserID, int(RefreshTokenTTL.Seconds()), "/", "", secure, true)
	c.SetCookie(CookieUserType, UserTypeCustom, int(RefreshTokenTTL.Seconds()), "/", "", secure, true)
}

// ClearAdminCookies removes the admin session cookies.
func ClearAdminCookies(c *gin.Context) {
	sameSite, secure := cookieSettings()
	c.SetSameSite(sameSite)
	c.SetCookie(CookieAccess, "", -1, "/", "", secure, true)
	c.SetCookie(CookieRefresh, "", -1, "/", "", secure, true)
	c.SetCookie(CookieUserType, "", -1, "/", "", secure, true)
}

// ClearCustomUserCookies removes the custom-user session cookies.
func ClearCustomUserCookies(c *gin.Context) {
	sameSite, secure := cookieSettings()
	c.SetSameSite(sameSite)
	c.SetCookie(CookieCustomUserID, "", -1, "/", "", secure, true)
	c.SetCookie(CookieUserType, "", -1, "/", "", secure, true)
}

// ParseAccessToken verifies an HS256 access token and returns the subject
// (admin user id). Any failure — bad signature, expiry, wrong method — is a
// plain error; callers degrade to anonymous, they never branch on the cause.
func ParseAccessToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return sub, nil
}

// ResolveIdentity resolves "who is calling" from the session cookies and
// attaches a model.Actor to the context. Resolution is read-only and never
// aborts: failures yield an anonymous actor.
//
// Order is fixed: a valid access token wins; otherwise a custom session
// marker with user_type=user is looked up; otherwise anonymous. A
// discriminator claiming "admin" with a failing token never falls through to
// custom-user resolution.
func ResolveIdentity(admins repository.AdminUserRepository, customs repository.CustomUserRepository, sessions *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(actorKey, resolveActor(c, admins, customs, sessions))
		c.Next()
	}
}

func resolveActor(c *gin.Context, admins repository.AdminUserRepository, customs repository.CustomUserRepository, sessions *cache.Cache) model.Actor {
	userType, _ := c.Cookie(CookieUserType)

	if access, err := c.Cookie(CookieAccess); err == nil && access != "" {
		sub, err := ParseAccessToken(access)
		if err != nil {
			return model.Actor{}
		}
		admin, err := admins.GetByID(c.Request.Context(), sub)
		if err != nil {
			return model.Actor{}
		}
		return model.Actor{Admin: admin}
	}

	if userType == UserTypeAdmin {
		// Discriminator says admin but no verifiable token: stale cookies.
		return model.Actor{}
	}

	customID, err := c.Cookie(CookieCustomUserID)
	if err != nil || customID == "" || userType != UserTypeCustom {
		return model.Actor{}
	}

	if sessions != nil {
		if cached, ok := sessions.Get(customID); ok {
			if user, ok := cached.(*model.CustomUser); ok {
				return model.Actor{Custom: user}
			}
		}
	}

	user, err := customs.GetByID(c.Request.Context(), customID)
	if err != nil {
		return model.Actor{}
	}
	if sessions != nil {
		sessions.Set(customID, user)
	}
	return model.Actor{Custom: user}
}

// GetActor returns the resolved actor for the request. Routes without
// ResolveIdentity in their chain get the anonymous actor.
func GetActor(c *gin.Context) model.Actor {
	if v, exists := c.Get(actorKey); exists {
		if actor, ok := v.(model.Actor); ok {
			return actor
		}
	}
	return model.Actor{}
}

// RequireAuth rejects anonymous requests with 401 and a login redirect hint.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetActor(c).IsAnonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.H{
				"error":    "Authentication required",
				"redirect": "/login/",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anything but an admin with elevated-privilege flags.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor.IsAnonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.H{
				"error":    "Authentication required",
				"redirect": "/login/",
			})
			return
		}
		if !actor.IsAdmin() || !actor.Admin.CanLogin() {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Err("Access denied: admin privileges required"))
			return
		}
		c.Next()
	}
}
