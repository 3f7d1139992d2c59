package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"reception/internal/middleware"
	"reception/internal/service"
	"reception/pkg/pagination"
	"reception/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// exportColumns is the fixed column order of both export formats.
var exportColumns = []string{
	"Client Name", "Booking Date", "Start Time", "End Time",
	"Phone Number", "Email", "Event Type", "Menu Type", "Pack Count",
	"Advance Given", "Created By", "Created At",
}

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// RegisterRoutes binds reporting and export, admin only.
func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports", middleware.RequireAuth(), middleware.RequireAdmin())
	{
		reports.GET("", h.Report)
		reports.GET("/export", h.Export)
	}
}

func reportQuery(c *gin.Context) service.ReportQuery {
	return service.ReportQuery{
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
		EventType:  c.Query("event_type"),
		CreatedBy:  c.Query("created_by"),
		Search:     c.Query("search"),
		MinAdvance: c.Query("min_advance"),
		MaxAdvance: c.Query("max_advance"),
	}
}

// Report returns the filtered bookings with statistics over the whole set
// @Summary      Booking report
// @Description  Filtered booking page plus total count, summed advance and per-event-type breakdown computed over the entire filtered set.
// @Tags         reports
// @Produce      json
// @Param        date_from    query     string  false  "Inclusive start date (YYYY-MM-DD)"
// @Param        date_to      query     string  false  "Inclusive end date (YYYY-MM-DD)"
// @Param        event_type   query     string  false  "Event type filter"
// @Param        created_by   query     string  false  "Creator filter, user_<id> or custom_<id>"
// @Param        search       query     string  false  "Client name/email/phone search"
// @Param        min_advance  query     string  false  "Minimum advance"
// @Param        max_advance  query     string  false  "Maximum advance"
// @Param        page         query     int     false  "Page"
// @Param        per_page     query     int     false  "Page size"
// @Success      200          {object}  map[string]interface{}
// @Failure      400          {object}  map[string]interface{}
// @Router       /api/reports [get]
func (h *ReportHandler) Report(c *gin.Context) {
	p := pagination.Parse(c)

	bookings, stats, total, err := h.reportService.Report(c.Request.Context(), reportQuery(c), p.Offset, p.PerPage, requestMeta(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.H{
		"bookings":   bookings,
		"stats":      stats,
		"pagination": pagination.NewMeta(p, total),
	})
}

// Export streams the filtered bookings as CSV or XLSX
// @Summary      Export bookings
// @Description  Exports every booking matching the filters. format=csv (default) or format=xlsx.
// @Tags         reports
// @Produce      application/octet-stream
// @Param        format     query  string  false  "csv or xlsx"
// @Param        date_from  query  string  false  "Inclusive start date (YYYY-MM-DD)"
// @Param        date_to    query  string  false  "Inclusive end date (YYYY-MM-DD)"
// @Success      200
// @Failure      400  {object}  map[string]interface{}
// @Router       /api/reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, response.Err("Unsupported format, use csv or xlsx"))
		return
	}

	rows, err := h.reportService.ExportRows(c.Request.Context(), reportQuery(c), requestMeta(c))
	if err != nil {
		writeError(c, err)
		return
	}

	filename := "bookings_" + time.Now().Format("20060102_150405")
	if format == "csv" {
		h.writeCSV(c, filename+".csv", rows)
		return
	}
	h.writeXLSX(c, filename+".xlsx", rows)
}

func exportRow(b service.BookingResponse) []string {
	return []string{
		b.ClientName, b.BookingDate, b.StartTime, b.EndTime,
		b.PhoneNumber, b.Email, b.EventType, b.MenuType,
		strconv.Itoa(b.PackCount), b.AdvanceGiven, b.CreatedBy, b.CreatedAt,
	}
}

func (h *ReportHandler) writeCSV(c *gin.Context, filename string, rows []service.BookingResponse) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	w := csv.NewWriter(c.Writer)
	if err := w.Write(exportColumns); err != nil {
		return
	}
	for _, b := range rows {
		if err := w.Write(exportRow(b)); err != nil {
			return
		}
	}
	w.Flush()
}

func (h *ReportHandler) writeXLSX(c *gin.Context, filename string, rows []service.BookingResponse) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Err("Failed to build workbook"))
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, name := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, name)
	}
	for i, b := range rows {
		values := exportRow(b)
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(c.Writer); err != nil {
		return
	}
}
