package handler

import (
	"net/http"
	"strconv"
	"time"

	"reception/internal/middleware"
	"reception/internal/service"
	"reception/pkg/response"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// RegisterRoutes binds the booking CRUD and the calendar view. Everything
// requires an authenticated identity; both identity classes may book.
func (h *BookingHandler) RegisterRoutes(router *gin.RouterGroup) {
	bookings := router.Group("/api/bookings", middleware.RequireAuth())
	{
		bookings.GET("", h.List)
		bookings.POST("", h.Create)
		bookings.GET("/date/:date", h.ListByDate)
		bookings.GET("/:id", h.GetByID)
		bookings.PUT("/:id", h.Update)
		bookings.DELETE("/:id", h.Delete)
	}
	router.GET("/api/calendar", middleware.RequireAuth(), h.Calendar)
}

// Create adds a booking
// @Summary      Create booking
// @Description  Creates a booking. At most two bookings may exist per calendar day, and end time must be after start time.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateBookingRequest  true  "Booking Form"
// @Success      201      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Router       /api/bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req service.CreateBookingRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Err("Invalid request payload"))
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success("Booking created successfully", response.H{
		"booking": booking,
	}))
}

// List returns bookings ordered by date then start time, newest first
// @Summary      List bookings
// @Tags         bookings
// @Produce      json
// @Param        created_by  query     string  false  "Creator filter, user_<id> or custom_<id>"
// @Success      200         {object}  map[string]interface{}
// @Router       /api/bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	query := service.BookingListQuery{CreatedBy: c.Query("created_by")}

	bookings, err := h.bookingService.List(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.H{"bookings": bookings})
}

// ListByDate returns the bookings of one calendar day
// @Summary      Bookings on a date
// @Tags         bookings
// @Produce      json
// @Param        date  path      string  true  "Date (YYYY-MM-DD)"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Router       /api/bookings/date/{date} [get]
func (h *BookingHandler) ListByDate(c *gin.Context) {
	bookings, err := h.bookingService.ListByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.H{
		"date":     c.Param("date"),
		"bookings": bookings,
	})
}

// GetByID returns one booking
// @Summary      Get booking
// @Tags         bookings
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/bookings/{id} [get]
func (h *BookingHandler) GetByID(c *gin.Context) {
	booking, err := h.bookingService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.H{"booking": booking})
}

// Update edits a booking; absent fields keep their value
// @Summary      Update booking
// @Description  Partial update. Moving a booking to another day re-checks the daily cap on the target day.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Booking ID"
// @Param        payload  body      service.UpdateBookingRequest  true  "Fields to change"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Failure      404      {object}  map[string]interface{}
// @Router       /api/bookings/{id} [put]
func (h *BookingHandler) Update(c *gin.Context) {
	var req service.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Err("Invalid request payload"))
		return
	}

	booking, err := h.bookingService.Update(c.Request.Context(), c.Param("id"), req, requestMeta(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success("Booking updated successfully", response.H{
		"booking": booking,
	}))
}

// Delete removes a booking
// @Summary      Delete booking
// @Tags         bookings
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.bookingService.Delete(c.Request.Context(), c.Param("id"), requestMeta(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success("Booking deleted successfully", nil))
}

// Calendar returns the month grid with per-day bookings
// @Summary      Calendar month
// @Tags         bookings
// @Produce      json
// @Param        year   query     int  false  "Year (defaults to current)"
// @Param        month  query     int  false  "Month 1-12 (defaults to current)"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]interface{}
// @Router       /api/calendar [get]
func (h *BookingHandler) Calendar(c *gin.Context) {
	now := time.Now()
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Err("Invalid year"))
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Err("Invalid month"))
		return
	}

	days, err := h.bookingService.CalendarMonth(c.Request.Context(), year, month)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.H{
		"year":  year,
		"month": month,
		"days":  days,
	})
}
