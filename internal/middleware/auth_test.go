package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reception/internal/model"
	"reception/internal/repository"
	"reception/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	schema := []string{
		`CREATE TABLE admin_users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			is_superuser BOOLEAN NOT NULL DEFAULT 0,
			is_staff BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE custom_users (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			login_email TEXT NOT NULL UNIQUE,
			login_password TEXT NOT NULL,
			created_by_id TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

type identityFixture struct {
	db       *gorm.DB
	router   *gin.Engine
	sessions *cache.Cache
	admin    *model.AdminUser
	custom   *model.CustomUser
}

func newIdentityFixture(t *testing.T) *identityFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := openTestDB(t)
	admin := &model.AdminUser{
		ID:       uuid.New(),
		Username: "boss",
		Email:    "boss@example.com",
		Password: "irrelevant",
		IsStaff:  true,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	custom := &model.CustomUser{
		ID:            uuid.New(),
		FullName:      "Priya Sharma",
		LoginEmail:    "priya@example.com",
		LoginPassword: "irrelevant",
	}
	if err := db.Create(custom).Error; err != nil {
		t.Fatalf("seed custom user: %v", err)
	}

	sessions := cache.New(time.Minute, 100)
	router := gin.New()
	router.Use(ResolveIdentity(
		repository.NewAdminUserRepository(db),
		repository.NewCustomUserRepository(db),
		sessions,
	))
	router.GET("/whoami", func(c *gin.Context) {
		actor := GetActor(c)
		c.JSON(200, gin.H{"user_type": actor.UserType(), "name": actor.DisplayName()})
	})
	router.GET("/admin-only", RequireAuth(), RequireAdmin(), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	return &identityFixture{db: db, router: router, sessions: sessions, admin: admin, custom: custom}
}

func signToken(t *testing.T, subject string, secret []byte, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doRequest(fx *identityFixture, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func TestResolveIdentity_ValidAdminToken(t *testing.T) {
	fx := newIdentityFixture(t)

	access := signToken(t, fx.admin.ID.String(), GetJWTSecret(), time.Hour)
	rec := doRequest(fx,
		&http.Cookie{Name: CookieAccess, Value: access},
		&http.Cookie{Name: CookieUserType, Value: UserTypeAdmin},
	)

	body := rec.Body.String()
	if rec.Code != 200 || !contains(body, `"user_type":"admin"`) || !contains(body, "boss") {
		t.Fatalf("status %d body %s", rec.Code, body)
	}
}

func TestResolveIdentity_InvalidTokenIsAnonymous(t *testing.T) {
	fx := newIdentityFixture(t)

	cases := []string{
		"garbage",
		signToken(t, fx.admin.ID.String(), []byte("wrong-secret"), time.Hour),
		signToken(t, fx.admin.ID.String(), GetJWTSecret(), -time.Hour),
		signToken(t, uuid.NewString(), GetJWTSecret(), time.Hour), // no such admin
	}
	for _, access := range cases {
		rec := doRequest(fx,
			&http.Cookie{Name: CookieAccess, Value: access},
			&http.Cookie{Name: CookieUserType, Value: UserTypeAdmin},
		)
		if !contains(rec.Body.String(), `"user_type":""`) {
			t.Fatalf("token %q resolved to %s, want anonymous", access, rec.Body.String())
		}
	}
}

func TestResolveIdentity_StaleAdminDiscriminatorDoesNotFallThrough(t *testing.T) {
	fx := newIdentityFixture(t)

	// user_type=admin with no token, plus a valid custom marker. The admin
	// claim must not degrade into the custom identity.
	rec := doRequest(fx,
		&http.Cookie{Name: CookieUserType, Value: UserTypeAdmin},
		&http.Cookie{Name: CookieCustomUserID, Value: fx.custom.ID.String()},
	)
	if !contains(rec.Body.String(), `"user_type":""`) {
		t.Fatalf("stale admin cookies resolved to %s, want anonymous", rec.Body.String())
	}
}

func TestResolveIdentity_CustomSession(t *testing.T) {
	fx := newIdentityFixture(t)

	rec := doRequest(fx,
		&http.Cookie{Name: CookieUserType, Value: UserTypeCustom},
		&http.Cookie{Name: CookieCustomUserID, Value: fx.custom.ID.String()},
	)
	body := rec.Body.String()
	if !contains(body, `"user_type":"user"`) || !contains(body, "Priya Sharma") {
		t.Fatalf("body = %s", body)
	}

	// The lookup is now cached.
	if _, ok := fx.sessions.Get(fx.custom.ID.String()); !ok {
		t.Fatal("custom session must be cached after resolution")
	}

	// Marker without the discriminator stays anonymous.
	rec = doRequest(fx, &http.Cookie{Name: CookieCustomUserID, Value: fx.custom.ID.String()})
	if !contains(rec.Body.String(), `"user_type":""`) {
		t.Fatalf("marker without discriminator resolved to %s", rec.Body.String())
	}
}

func TestResolveIdentity_UnknownCustomIDIsAnonymous(t *testing.T) {
	fx := newIdentityFixture(t)

	rec := doRequest(fx,
		&http.Cookie{Name: CookieUserType, Value: UserTypeCustom},
		&http.Cookie{Name: CookieCustomUserID, Value: uuid.NewString()},
	)
	if !contains(rec.Body.String(), `"user_type":""`) {
		t.Fatalf("unknown id resolved to %s", rec.Body.String())
	}
}

func TestRequireAdmin_Gates(t *testing.T) {
	fx := newIdentityFixture(t)

	// Anonymous: 401.
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", rec.Code)
	}
	if !contains(rec.Body.String(), "/login/") {
		t.Fatalf("401 body must carry the login redirect: %s", rec.Body.String())
	}

	// Custom user: authenticated but not admin, 403.
	req = httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.AddCookie(&http.Cookie{Name: CookieUserType, Value: UserTypeCustom})
	req.AddCookie(&http.Cookie{Name: CookieCustomUserID, Value: fx.custom.ID.String()})
	rec = httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("custom user status = %d, want 403", rec.Code)
	}

	// Staff admin: 200.
	access := signToken(t, fx.admin.ID.String(), GetJWTSecret(), time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.AddCookie(&http.Cookie{Name: CookieAccess, Value: access})
	rec = httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}

	// Admin with both flags cleared: 403.
	if err := fx.db.Model(fx.admin).Updates(map[string]interface{}{"is_staff": false, "is_superuser": false}).Error; err != nil {
		t.Fatalf("clear flags: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.AddCookie(&http.Cookie{Name: CookieAccess, Value: access})
	rec = httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("flagless admin status = %d, want 403", rec.Code)
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
