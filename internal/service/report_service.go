package service

import (
	"context"
	"fmt"
	"strings"

	"reception/internal/model"
	"reception/internal/repository"
	"reception/pkg/apperr"

	"github.com/shopspring/decimal"
)

// ReportQuery mirrors the report filter query parameters. All filters are
// independent and composable; zero values mean "no filter".
type ReportQuery struct {
	DateFrom   string
	DateTo     string
	EventType  string
	CreatedBy  string // "user_<id>" or "custom_<id>"
	Search     string
	MinAdvance string
	MaxAdvance string
}

type ReportService interface {
	// Report returns the filtered page plus statistics over the whole
	// filtered set (not just the page). Generation is audited as a view.
	Report(ctx context.Context, query ReportQuery, offset, limit int, meta RequestMeta) ([]BookingResponse, model.BookingReportStats, int64, error)
	// ExportRows returns every filtered booking in export order and audits
	// the export.
	ExportRows(ctx context.Context, query ReportQuery, meta RequestMeta) ([]BookingResponse, error)
}

type reportService struct {
	bookings   repository.BookingRepository
	activities ActivityService
}

func NewReportService(bookings repository.BookingRepository, activities ActivityService) ReportService {
	return &reportService{bookings: bookings, activities: activities}
}

func (s *reportService) buildFilter(query ReportQuery) (repository.BookingFilter, error) {
	var filter repository.BookingFilter

	if query.DateFrom != "" {
		from, err := parseBookingDate(query.DateFrom)
		if err != nil {
			return filter, apperr.Invalid("Invalid date_from, expected YYYY-MM-DD")
		}
		filter.DateFrom = &from
	}
	if query.DateTo != "" {
		to, err := parseBookingDate(query.DateTo)
		if err != nil {
			return filter, apperr.Invalid("Invalid date_to, expected YYYY-MM-DD")
		}
		filter.DateTo = &to
	}
	filter.EventType = query.EventType
	filter.Search = query.Search

	if adminID, customID, ok := parsePerformer(query.CreatedBy); ok {
		filter.CreatedByAdmin = adminID
		filter.CreatedByCustom = customID
	}

	if query.MinAdvance != "" {
		min, err := decimal.NewFromString(query.MinAdvance)
		if err != nil {
			return filter, apperr.Invalid("Invalid min_advance")
		}
		filter.MinAdvance = &min
	}
	if query.MaxAdvance != "" {
		max, err := decimal.NewFromString(query.MaxAdvance)
		if err != nil {
			return filter, apperr.Invalid("Invalid max_advance")
		}
		filter.MaxAdvance = &max
	}
	return filter, nil
}

func (s *reportService) Report(ctx context.Context, query ReportQuery, offset, limit int, meta RequestMeta) ([]BookingResponse, model.BookingReportStats, int64, error) {
	var stats model.BookingReportStats

	filter, err := s.buildFilter(query)
	if err != nil {
		return nil, stats, 0, err
	}

	bookings, total, err := s.bookings.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, stats, 0, err
	}

	totalAdvance, err := s.bookings.SumAdvance(ctx, filter)
	if err != nil {
		return nil, stats, 0, err
	}
	breakdown, err := s.bookings.EventBreakdown(ctx, filter)
	if err != nil {
		return nil, stats, 0, err
	}

	stats = model.BookingReportStats{
		TotalBookings:  total,
		TotalAdvance:   totalAdvance.StringFixed(2),
		EventBreakdown: breakdown,
	}

	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, *mapBooking(&bookings[i]))
	}

	record(ctx, s.activities, model.ActionView, model.EntityBooking, "", "",
		fmt.Sprintf("Generated booking report (%d bookings%s)", total, describeFilters(query)), meta)

	return out, stats, total, nil
}

func (s *reportService) ExportRows(ctx context.Context, query ReportQuery, meta RequestMeta) ([]BookingResponse, error) {
	filter, err := s.buildFilter(query)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, *mapBooking(&bookings[i]))
	}

	record(ctx, s.activities, model.ActionExport, model.EntityBooking, "", "",
		fmt.Sprintf("Exported %d bookings", len(out)), meta)

	return out, nil
}

func describeFilters(query ReportQuery) string {
	var parts []string
	if query.DateFrom != "" {
		parts = append(parts, "from "+query.DateFrom)
	}
	if query.DateTo != "" {
		parts = append(parts, "to "+query.DateTo)
	}
	if query.EventType != "" {
		parts = append(parts, "event: "+query.EventType)
	}
	if len(parts) == 0 {
		return ""
	}
	return ", " + strings.Join(parts, ", ")
}
