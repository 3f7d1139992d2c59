package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"reception/internal/model"
	"reception/internal/repository"
	"reception/pkg/apperr"

	"github.com/shopspring/decimal"
)

const (
	// MaxBookingsPerDay is the daily capacity cap.
	MaxBookingsPerDay = 2

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var phoneRegex = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// --- DTOs ---

// CreateBookingRequest carries the booking form. AdvanceGiven is a decimal
// string so the non-negativity check never touches binary floats.
type CreateBookingRequest struct {
	ClientName   string `json:"client_name" form:"client_name"`
	BookingDate  string `json:"booking_date" form:"booking_date"`
	StartTime    string `json:"start_time" form:"start_time"`
	EndTime      string `json:"end_time" form:"end_time"`
	PhoneNumber  string `json:"phone_number" form:"phone_number"`
	Email        string `json:"email" form:"email"`
	EventType    string `json:"event_type" form:"event_type"`
	MenuType     string `json:"menu_type" form:"menu_type"`
	PackCount    int    `json:"pack_count" form:"pack_count"`
	AdvanceGiven string `json:"advance_given" form:"advance_given"`
}

// UpdateBookingRequest has partial-update semantics: absent (nil) fields are
// left untouched, never reset.
type UpdateBookingRequest struct {
	ClientName   *string `json:"client_name"`
	BookingDate  *string `json:"booking_date"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	PhoneNumber  *string `json:"phone_number"`
	Email        *string `json:"email"`
	EventType    *string `json:"event_type"`
	MenuType     *string `json:"menu_type"`
	PackCount    *int    `json:"pack_count"`
	AdvanceGiven *string `json:"advance_given"`
}

type BookingResponse struct {
	ID           string `json:"id"`
	ClientName   string `json:"client_name"`
	BookingDate  string `json:"booking_date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	PhoneNumber  string `json:"phone_number"`
	Email        string `json:"email"`
	EventType    string `json:"event_type"`
	MenuType     string `json:"menu_type"`
	PackCount    int    `json:"pack_count"`
	AdvanceGiven string `json:"advance_given"`
	CreatedBy    string `json:"created_by"`
	CreatedAt    string `json:"created_at"`
}

// CalendarDay summarizes one day of the month grid.
type CalendarDay struct {
	Date         string            `json:"date"`
	Day          int               `json:"day"`
	IsToday      bool              `json:"is_today"`
	BookingCount int               `json:"booking_count"`
	Bookings     []CalendarBooking `json:"bookings"`
}

type CalendarBooking struct {
	ID         string `json:"id"`
	ClientName string `json:"client_name"`
	EventType  string `json:"event_type"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

// BookingListQuery mirrors the list filter query parameters.
type BookingListQuery struct {
	CreatedBy string // "user_<id>" or "custom_<id>"
}

// --- Interface ---

type BookingService interface {
	// Create enforces both ledger invariants. The daily-cap check and the
	// insert run in one serializable transaction so concurrent creates
	// cannot both pass the count check.
	Create(ctx context.Context, req CreateBookingRequest, meta RequestMeta) (*BookingResponse, error)
	GetByID(ctx context.Context, id string) (*BookingResponse, error)
	List(ctx context.Context, query BookingListQuery) ([]BookingResponse, error)
	ListByDate(ctx context.Context, date string) ([]BookingResponse, error)
	CalendarMonth(ctx context.Context, year, month int) ([]CalendarDay, error)
	// Update applies only the fields present in the request. A date change
	// re-checks the cap on the new date excluding the row itself.
	Update(ctx context.Context, id string, req UpdateBookingRequest, meta RequestMeta) (*BookingResponse, error)
	Delete(ctx context.Context, id string, meta RequestMeta) error
}

type bookingService struct {
	repo       repository.BookingRepository
	txManager  repository.TransactionManager
	activities ActivityService
}

func NewBookingService(repo repository.BookingRepository, txManager repository.TransactionManager, activities ActivityService) BookingService {
	return &bookingService{repo: repo, txManager: txManager, activities: activities}
}

func mapBooking(b *model.Booking) *BookingResponse {
	return &BookingResponse{
		ID:           b.ID.String(),
		ClientName:   b.ClientName,
		BookingDate:  b.BookingDate.Format(dateLayout),
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		PhoneNumber:  b.PhoneNumber,
		Email:        b.Email,
		EventType:    b.EventType,
		MenuType:     b.MenuType,
		PackCount:    b.PackCount,
		AdvanceGiven: b.AdvanceGiven.StringFixed(2),
		CreatedBy:    b.CreatorName(),
		CreatedAt:    b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func parseBookingDate(value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperr.Invalid("Invalid booking_date, expected YYYY-MM-DD")
	}
	return d, nil
}

func parseBookingTime(field, value string) (string, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return "", apperr.Invalid(fmt.Sprintf("Invalid %s, expected HH:MM", field))
	}
	return t.Format(timeLayout), nil
}

func parseAdvance(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	advance, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperr.Invalid("Invalid advance_given")
	}
	if advance.LessThan(decimal.Zero) {
		return decimal.Zero, apperr.Invalid("advance_given must be non-negative")
	}
	return advance, nil
}

func (s *bookingService) Create(ctx context.Context, req CreateBookingRequest, meta RequestMeta) (*BookingResponse, error) {
	required := []struct{ name, value string }{
		{"client_name", req.ClientName},
		{"booking_date", req.BookingDate},
		{"start_time", req.StartTime},
		{"end_time", req.EndTime},
		{"phone_number", req.PhoneNumber},
		{"event_type", req.EventType},
	}
	for _, f := range required {
		if f.value == "" {
			return nil, apperr.Invalid(f.name + " is required")
		}
	}

	date, err := parseBookingDate(req.BookingDate)
	if err != nil {
		return nil, err
	}
	start, err := parseBookingTime("start_time", req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseBookingTime("end_time", req.EndTime)
	if err != nil {
		return nil, err
	}
	if end <= start {
		return nil, apperr.Invalid("End time must be after start time")
	}
	if !phoneRegex.MatchString(req.PhoneNumber) {
		return nil, apperr.Invalid("Invalid phone_number format")
	}
	if req.PackCount < 0 {
		return nil, apperr.Invalid("pack_count must be non-negative")
	}
	advance, err := parseAdvance(req.AdvanceGiven)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		ClientName:        req.ClientName,
		BookingDate:       date,
		StartTime:         start,
		EndTime:           end,
		PhoneNumber:       req.PhoneNumber,
		Email:             req.Email,
		EventType:         req.EventType,
		MenuType:          req.MenuType,
		PackCount:         req.PackCount,
		AdvanceGiven:      advance,
		CreatedByAdminID:  meta.Actor.AdminID(),
		CreatedByCustomID: meta.Actor.CustomID(),
	}

	err = s.txManager.RunInSerializableTx(ctx, func(txCtx context.Context) error {
		count, err := s.repo.CountOnDate(txCtx, date, "")
		if err != nil {
			return err
		}
		if count >= MaxBookingsPerDay {
			return apperr.Conflict("Maximum 2 bookings per day")
		}
		return s.repo.Create(txCtx, booking)
	})
	if err != nil {
		return nil, err
	}

	record(ctx, s.activities, model.ActionCreate, model.EntityBooking, booking.ID.String(), booking.ClientName,
		fmt.Sprintf("Created booking for %s on %s (%s)", booking.ClientName, booking.BookingDate.Format(dateLayout), booking.EventType), meta)

	booking.CreatedByAdmin = meta.Actor.Admin
	booking.CreatedByCustom = meta.Actor.Custom
	return mapBooking(booking), nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Booking not found")
	}
	return mapBooking(booking), nil
}

func (s *bookingService) List(ctx context.Context, query BookingListQuery) ([]BookingResponse, error) {
	var filter repository.BookingFilter
	if adminID, customID, ok := parsePerformer(query.CreatedBy); ok {
		filter.CreatedByAdmin = adminID
		filter.CreatedByCustom = customID
	}

	bookings, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, *mapBooking(&bookings[i]))
	}
	return out, nil
}

func (s *bookingService) ListByDate(ctx context.Context, date string) ([]BookingResponse, error) {
	d, err := parseBookingDate(date)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.ListByDate(ctx, d)
	if err != nil {
		return nil, err
	}

	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, *mapBooking(&bookings[i]))
	}
	return out, nil
}

func (s *bookingService) CalendarMonth(ctx context.Context, year, month int) ([]CalendarDay, error) {
	if month < 1 || month > 12 {
		return nil, apperr.Invalid("month must be between 1 and 12")
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, 0)

	bookings, err := s.repo.ListBetween(ctx, first, last)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]CalendarBooking)
	for _, b := range bookings {
		key := b.BookingDate.Format(dateLayout)
		byDate[key] = append(byDate[key], CalendarBooking{
			ID:         b.ID.String(),
			ClientName: b.ClientName,
			EventType:  b.EventType,
			StartTime:  b.StartTime,
			EndTime:    b.EndTime,
		})
	}

	today := time.Now().Format(dateLayout)
	days := make([]CalendarDay, 0, 31)
	for d := first; d.Before(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		dayBookings := byDate[key]
		if dayBookings == nil {
			dayBookings = []CalendarBooking{}
		}
		days = append(days, CalendarDay{
			Date:         key,
			Day:          d.Day(),
			IsToday:      key == today,
			BookingCount: len(dayBookings),
			Bookings:     dayBookings,
		})
	}
	return days, nil
}

func (s *bookingService) Update(ctx context.Context, id string, req UpdateBookingRequest, meta RequestMeta) (*BookingResponse, error) {
	var updated *model.Booking

	err := s.txManager.RunInSerializableTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return apperr.NotFound("Booking not found")
		}

		if req.ClientName != nil {
			booking.ClientName = *req.ClientName
		}
		if req.BookingDate != nil {
			newDate, err := parseBookingDate(*req.BookingDate)
			if err != nil {
				return err
			}
			if !newDate.Equal(booking.BookingDate) {
				count, err := s.repo.CountOnDate(txCtx, newDate, booking.ID.String())
				if err != nil {
					return err
				}
				if count >= MaxBookingsPerDay {
					return apperr.Conflict("Maximum 2 bookings per day on the new date")
				}
			}
			booking.BookingDate = newDate
		}
		if req.StartTime != nil {
			start, err := parseBookingTime("start_time", *req.StartTime)
			if err != nil {
				return err
			}
			booking.StartTime = start
		}
		if req.EndTime != nil {
			end, err := parseBookingTime("end_time", *req.EndTime)
			if err != nil {
				return err
			}
			booking.EndTime = end
		}
		if req.PhoneNumber != nil {
			if !phoneRegex.MatchString(*req.PhoneNumber) {
				return apperr.Invalid("Invalid phone_number format")
			}
			booking.PhoneNumber = *req.PhoneNumber
		}
		if req.Email != nil {
			booking.Email = *req.Email
		}
		if req.EventType != nil {
			booking.EventType = *req.EventType
		}
		if req.MenuType != nil {
			booking.MenuType = *req.MenuType
		}
		if req.PackCount != nil {
			if *req.PackCount < 0 {
				return apperr.Invalid("pack_count must be non-negative")
			}
			booking.PackCount = *req.PackCount
		}
		if req.AdvanceGiven != nil {
			advance, err := parseAdvance(*req.AdvanceGiven)
			if err != nil {
				return err
			}
			booking.AdvanceGiven = advance
		}

		// Re-validate after all field updates are applied.
		if booking.EndTime <= booking.StartTime {
			return apperr.Invalid("End time must be after start time")
		}

		if err := s.repo.Update(txCtx, booking); err != nil {
			return err
		}
		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	record(ctx, s.activities, model.ActionUpdate, model.EntityBooking, updated.ID.String(), updated.ClientName,
		fmt.Sprintf("Updated booking for %s on %s", updated.ClientName, updated.BookingDate.Format(dateLayout)), meta)

	return mapBooking(updated), nil
}

func (s *bookingService) Delete(ctx context.Context, id string, meta RequestMeta) error {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperr.NotFound("Booking not found")
	}

	// Capture identifying fields before removal for the audit description.
	description := fmt.Sprintf("Deleted booking for %s on %s (%s)",
		booking.ClientName, booking.BookingDate.Format(dateLayout), booking.EventType)

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	record(ctx, s.activities, model.ActionDelete, model.EntityBooking, id, booking.ClientName, description, meta)
	return nil
}
