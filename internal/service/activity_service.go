package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"reception/internal/model"
	"reception/internal/repository"
	ws "reception/internal/websocket"

	"github.com/google/uuid"
)

// RequestMeta carries the resolved actor plus client metadata that audit
// entries record. Handlers build it from the request; services thread it
// through explicitly instead of reading ambient state.
type RequestMeta struct {
	Actor     model.Actor
	IPAddress string
	UserAgent string
}

// --- DTOs ---

type ActivityLogResponse struct {
	ID          string `json:"id"`
	Action      string `json:"action"`
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id"`
	EntityName  string `json:"entity_name"`
	Description string `json:"description"`
	PerformedBy string `json:"performed_by"`
	IPAddress   string `json:"ip_address"`
	CreatedAt   string `json:"created_at"`
}

// ActivityLogQuery mirrors the filter query parameters of GET /activity/logs.
type ActivityLogQuery struct {
	Action     string
	EntityType string
	Performer  string // "user_<id>" (admin) or "custom_<id>", mutually exclusive prefixes
	DateFrom   string // "2006-01-02", inclusive
	DateTo     string // "2006-01-02", the whole day is included
	Search     string
}

// --- Interface ---

type ActivityService interface {
	// Record appends an entry and broadcasts it to the live feed. The
	// returned error is for the caller to log and discard: audit failures
	// must never abort the operation they describe.
	Record(ctx context.Context, action, entityType, entityID, entityName, description string, meta RequestMeta) error
	List(ctx context.Context, query ActivityLogQuery, offset, limit int) ([]ActivityLogResponse, int64, error)
	Stats(ctx context.Context, days int) (model.ActivityStats, error)
	// ClearOlderThan purges entries older than the given number of days and
	// returns the purged row count. Admin only, enforced by the caller.
	ClearOlderThan(ctx context.Context, days int, meta RequestMeta) (int64, error)
}

type activityService struct {
	repo repository.ActivityLogRepository
	hub  *ws.Hub
}

// NewActivityService creates an ActivityService. hub may be nil (tests).
func NewActivityService(repo repository.ActivityLogRepository, hub *ws.Hub) ActivityService {
	return &activityService{repo: repo, hub: hub}
}

func (s *activityService) Record(ctx context.Context, action, entityType, entityID, entityName, description string, meta RequestMeta) error {
	entry := &model.ActivityLog{
		Action:              action,
		EntityType:          entityType,
		EntityID:            entityID,
		EntityName:          entityName,
		Description:         description,
		PerformedByAdminID:  meta.Actor.AdminID(),
		PerformedByCustomID: meta.Actor.CustomID(),
		IPAddress:           meta.IPAddress,
		UserAgent:           meta.UserAgent,
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return err
	}

	if s.hub != nil {
		payload, err := json.Marshal(map[string]interface{}{
			"type":         "activity",
			"action":       entry.Action,
			"entity_type":  entry.EntityType,
			"entity_name":  entry.EntityName,
			"description":  entry.Description,
			"performed_by": meta.Actor.DisplayName(),
			"created_at":   entry.CreatedAt.Format(time.RFC3339),
		})
		if err == nil {
			s.hub.Broadcast <- payload
		}
	}
	return nil
}

// record is the shared best-effort helper used by the other services: the
// error is logged to the diagnostic stream and dropped.
func record(ctx context.Context, activities ActivityService, action, entityType, entityID, entityName, description string, meta RequestMeta) {
	if activities == nil {
		return
	}
	if err := activities.Record(ctx, action, entityType, entityID, entityName, description, meta); err != nil {
		log.Printf("activity log write failed (action=%s entity=%s): %v", action, entityType, err)
	}
}

func (s *activityService) List(ctx context.Context, query ActivityLogQuery, offset, limit int) ([]ActivityLogResponse, int64, error) {
	filter := repository.ActivityFilter{
		Action:     query.Action,
		EntityType: query.EntityType,
		Search:     query.Search,
	}

	if adminID, customID, ok := parsePerformer(query.Performer); ok {
		filter.PerformedByAdmin = adminID
		filter.PerformedByCustom = customID
	}

	if query.DateFrom != "" {
		from, err := time.Parse("2006-01-02", query.DateFrom)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid date_from: %w", err)
		}
		filter.CreatedFrom = &from
	}
	if query.DateTo != "" {
		to, err := time.Parse("2006-01-02", query.DateTo)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid date_to: %w", err)
		}
		// Push the exclusive bound one day out so date_to covers its whole day.
		before := to.AddDate(0, 0, 1)
		filter.CreatedBefore = &before
	}

	logs, total, err := s.repo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ActivityLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, ActivityLogResponse{
			ID:          l.ID.String(),
			Action:      l.Action,
			EntityType:  l.EntityType,
			EntityID:    l.EntityID,
			EntityName:  l.EntityName,
			Description: l.Description,
			PerformedBy: l.PerformerName(),
			IPAddress:   l.IPAddress,
			CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return out, total, nil
}

func (s *activityService) Stats(ctx context.Context, days int) (model.ActivityStats, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	stats := model.ActivityStats{DateRangeDays: days}

	total, err := s.repo.CountSince(ctx, since)
	if err != nil {
		return stats, err
	}
	stats.TotalActivities = total

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.repo.CountSince(ctx, todayStart)
	if err != nil {
		return stats, err
	}
	stats.TodayActivities = today

	if stats.ActionStats, err = s.repo.CountByActionSince(ctx, since); err != nil {
		return stats, err
	}
	if stats.EntityStats, err = s.repo.CountByEntitySince(ctx, since); err != nil {
		return stats, err
	}
	if stats.TopAdminUsers, err = s.repo.TopAdminPerformersSince(ctx, since, 5); err != nil {
		return stats, err
	}
	if stats.TopCustomUsers, err = s.repo.TopCustomPerformersSince(ctx, since, 5); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *activityService) ClearOlderThan(ctx context.Context, days int, meta RequestMeta) (int64, error) {
	if days <= 0 {
		days = 90
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	record(ctx, s, model.ActionDelete, model.EntitySystem, "", "",
		fmt.Sprintf("Cleared %d activity logs older than %d days", deleted, days), meta)

	return deleted, nil
}

// parsePerformer splits a "user_<id>"/"custom_<id>" filter value into the
// matching id reference. The prefixes are mutually exclusive.
func parsePerformer(value string) (adminID, customID *uuid.UUID, ok bool) {
	const adminPrefix, customPrefix = "user_", "custom_"
	switch {
	case len(value) > len(adminPrefix) && value[:len(adminPrefix)] == adminPrefix:
		id, err := uuid.Parse(value[len(adminPrefix):])
		if err != nil {
			return nil, nil, false
		}
		return &id, nil, true
	case len(value) > len(customPrefix) && value[:len(customPrefix)] == customPrefix:
		id, err := uuid.Parse(value[len(customPrefix):])
		if err != nil {
			return nil, nil, false
		}
		return nil, &id, true
	default:
		return nil, nil, false
	}
}
