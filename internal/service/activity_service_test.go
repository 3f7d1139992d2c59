package service

import (
	"context"
	"testing"
	"time"

	"reception/internal/model"
	"reception/internal/repository"

	"gorm.io/gorm"
)

func newActivityFixture(t *testing.T) (ActivityService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewActivityService(repository.NewActivityLogRepository(db), nil), db
}

func TestActivityService_RecordAndList(t *testing.T) {
	svc, db := newActivityFixture(t)

	admin := seedAdminUser(t, db, "admin@example.com", "pass-word")
	custom := seedCustomUser(t, db, "user@example.com", "pass-word")

	if err := svc.Record(context.Background(), model.ActionCreate, model.EntityBooking, "b1", "Asha Patel",
		"Created booking for Asha Patel", adminMeta(admin)); err != nil {
		t.Fatalf("record admin: %v", err)
	}
	if err := svc.Record(context.Background(), model.ActionUpdate, model.EntityUser, "u1", "Priya Sharma",
		"Updated user profile", customMeta(custom)); err != nil {
		t.Fatalf("record custom: %v", err)
	}

	logs, total, err := svc.List(context.Background(), ActivityLogQuery{}, 0, 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(logs) != 2 {
		t.Fatalf("total = %d, len = %d, want 2", total, len(logs))
	}

	// Performer names carry the identity-class suffix.
	names := map[string]bool{}
	for _, l := range logs {
		names[l.PerformedBy] = true
	}
	if !names[admin.Username+" (Admin)"] {
		t.Fatalf("admin performer name missing: %v", names)
	}
	if !names["Test User (User)"] {
		t.Fatalf("custom performer name missing: %v", names)
	}
}

func TestActivityService_List_Filters(t *testing.T) {
	svc, db := newActivityFixture(t)

	admin := seedAdminUser(t, db, "admin@example.com", "pass-word")
	custom := seedCustomUser(t, db, "user@example.com", "pass-word")

	seed := []struct {
		action, entity, name, desc string
		meta                       RequestMeta
	}{
		{model.ActionCreate, model.EntityBooking, "Asha Patel", "Created booking", adminMeta(admin)},
		{model.ActionDelete, model.EntityBooking, "Ravi Kumar", "Deleted booking", adminMeta(admin)},
		{model.ActionCreate, model.EntityUser, "Priya Sharma", "Registered new user", customMeta(custom)},
	}
	for _, s := range seed {
		if err := svc.Record(context.Background(), s.action, s.entity, "", s.name, s.desc, s.meta); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	cases := []struct {
		name  string
		query ActivityLogQuery
		want  int64
	}{
		{"by action", ActivityLogQuery{Action: model.ActionCreate}, 2},
		{"by entity", ActivityLogQuery{EntityType: model.EntityBooking}, 2},
		{"action and entity", ActivityLogQuery{Action: model.ActionCreate, EntityType: model.EntityBooking}, 1},
		{"by admin performer", ActivityLogQuery{Performer: "user_" + admin.ID.String()}, 2},
		{"by custom performer", ActivityLogQuery{Performer: "custom_" + custom.ID.String()}, 1},
		{"search case-insensitive", ActivityLogQuery{Search: "ASHA"}, 1},
		{"search description", ActivityLogQuery{Search: "registered"}, 1},
		{"search miss", ActivityLogQuery{Search: "nonexistent"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, total, err := svc.List(context.Background(), tc.query, 0, 50)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if total != tc.want {
				t.Fatalf("total = %d, want %d", total, tc.want)
			}
		})
	}
}

func TestActivityService_List_DateToCoversWholeDay(t *testing.T) {
	svc, _ := newActivityFixture(t)

	if err := svc.Record(context.Background(), model.ActionCreate, model.EntityBooking, "", "x", "entry", RequestMeta{}); err != nil {
		t.Fatalf("record: %v", err)
	}

	today := time.Now().Format("2006-01-02")
	_, total, err := svc.List(context.Background(), ActivityLogQuery{DateFrom: today, DateTo: today}, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 {
		t.Fatalf("total = %d, want 1: date_to must include its whole day", total)
	}

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	_, total, err = svc.List(context.Background(), ActivityLogQuery{DateFrom: tomorrow}, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 {
		t.Fatalf("total = %d, want 0 for a future date_from", total)
	}
}

func TestActivityService_Stats(t *testing.T) {
	svc, db := newActivityFixture(t)

	admin := seedAdminUser(t, db, "admin@example.com", "pass-word")
	for i := 0; i < 3; i++ {
		if err := svc.Record(context.Background(), model.ActionCreate, model.EntityBooking, "", "b", "created", adminMeta(admin)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := svc.Record(context.Background(), model.ActionDelete, model.EntityUser, "", "u", "deleted", adminMeta(admin)); err != nil {
		t.Fatalf("record: %v", err)
	}

	stats, err := svc.Stats(context.Background(), 0)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.DateRangeDays != 30 {
		t.Fatalf("date range = %d, want default 30", stats.DateRangeDays)
	}
	if stats.TotalActivities != 4 || stats.TodayActivities != 4 {
		t.Fatalf("totals = %d/%d, want 4/4", stats.TotalActivities, stats.TodayActivities)
	}
	if len(stats.ActionStats) != 2 || stats.ActionStats[0].Action != model.ActionCreate || stats.ActionStats[0].Count != 3 {
		t.Fatalf("action stats = %+v", stats.ActionStats)
	}
	if len(stats.TopAdminUsers) != 1 || stats.TopAdminUsers[0].Count != 4 {
		t.Fatalf("top admins = %+v", stats.TopAdminUsers)
	}
	if len(stats.TopCustomUsers) != 0 {
		t.Fatalf("top custom users = %+v, want empty", stats.TopCustomUsers)
	}
}

func TestActivityService_ClearOlderThan(t *testing.T) {
	svc, db := newActivityFixture(t)

	admin := seedAdminUser(t, db, "admin@example.com", "pass-word")

	// Two old entries, one fresh.
	old := time.Now().AddDate(0, 0, -120)
	for i := 0; i < 2; i++ {
		entry := &model.ActivityLog{
			Action:     model.ActionCreate,
			EntityType: model.EntityBooking,
		}
		if err := db.Create(entry).Error; err != nil {
			t.Fatalf("seed old: %v", err)
		}
		if err := db.Model(entry).Update("created_at", old).Error; err != nil {
			t.Fatalf("backdate: %v", err)
		}
	}
	if err := svc.Record(context.Background(), model.ActionCreate, model.EntityBooking, "", "b", "fresh", adminMeta(admin)); err != nil {
		t.Fatalf("record fresh: %v", err)
	}

	deleted, err := svc.ClearOlderThan(context.Background(), 0, adminMeta(admin))
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2 (default 90-day retention)", deleted)
	}

	// The fresh entry and the purge audit entry remain.
	_, total, err := svc.List(context.Background(), ActivityLogQuery{}, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Fatalf("remaining = %d, want 2", total)
	}
}

func TestParsePerformer(t *testing.T) {
	admin, custom, ok := parsePerformer("user_8e9c2f34-0000-0000-0000-000000000001")
	if !ok || admin == nil || custom != nil {
		t.Fatalf("user_ prefix: admin=%v custom=%v ok=%v", admin, custom, ok)
	}

	admin, custom, ok = parsePerformer("custom_8e9c2f34-0000-0000-0000-000000000002")
	if !ok || custom == nil || admin != nil {
		t.Fatalf("custom_ prefix: admin=%v custom=%v ok=%v", admin, custom, ok)
	}

	for _, bad := range []string{"", "user_", "user_not-a-uuid", "someone"} {
		if _, _, ok := parsePerformer(bad); ok {
			t.Fatalf("parsePerformer(%q) accepted", bad)
		}
	}
}
