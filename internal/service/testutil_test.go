package service

import (
	"context"
	"sync"
	"testing"

	"reception/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens an in-memory sqlite database with a sqlite-friendly copy
// of the schema (the production defaults are postgres functions).
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Every pooled connection to ":memory:" opens a distinct database, so the
	// pool is pinned to a single connection.
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
		`CREATE TABLE refresh_tokens (
			id TEXT PRIMARY KEY,
			admin_user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			expires_at DATETIME NOT NULL,
			revoked BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME
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
		`CREATE TABLE bookings (
			id TEXT PRIMARY KEY,
			client_name TEXT NOT NULL,
			booking_date DATE NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			email TEXT,
			event_type TEXT NOT NULL,
			menu_type TEXT,
			pack_count INTEGER NOT NULL DEFAULT 0,
			advance_given NUMERIC NOT NULL DEFAULT 0,
			created_by_admin_id TEXT,
			created_by_custom_id TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE activity_logs (
			id TEXT PRIMARY KEY,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT,
			entity_name TEXT,
			description TEXT,
			performed_by_admin_id TEXT,
			performed_by_custom_id TEXT,
			ip_address TEXT,
			user_agent TEXT,
			created_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hashed)
}

func seedAdminUser(t *testing.T, db *gorm.DB, email, password string) *model.AdminUser {
	t.Helper()
	admin := &model.AdminUser{
		ID:       uuid.New(),
		Username: "admin-" + uuid.NewString()[:8],
		Email:    email,
		Password: mustHash(t, password),
		IsStaff:  true,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return admin
}

func seedCustomUser(t *testing.T, db *gorm.DB, email, password string) *model.CustomUser {
	t.Helper()
	user := &model.CustomUser{
		ID:            uuid.New(),
		FullName:      "Test User",
		LoginEmail:    email,
		LoginPassword: mustHash(t, password),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed custom user: %v", err)
	}
	return user
}

func adminMeta(admin *model.AdminUser) RequestMeta {
	return RequestMeta{
		Actor:     model.Actor{Admin: admin},
		IPAddress: "127.0.0.1",
		UserAgent: "test-agent",
	}
}

func customMeta(user *model.CustomUser) RequestMeta {
	return RequestMeta{
		Actor:     model.Actor{Custom: user},
		IPAddress: "127.0.0.1",
		UserAgent: "test-agent",
	}
}

// lockedTxManager serializes transaction bodies with a mutex. Sqlite cannot
// run the concurrent serializable transactions the production retry loop
// expects from postgres, so tests substitute mutual exclusion, which gives
// the same "check and insert are atomic" guarantee the services rely on.
type lockedTxManager struct {
	mu sync.Mutex
}

func (m *lockedTxManager) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

func (m *lockedTxManager) RunInSerializableTx(ctx context.Context, fn func(context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}
