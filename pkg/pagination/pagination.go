package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
	MinPerPage     = 1
)

// Params holds validated pagination parameters.
type Params struct {
	Page    int
	PerPage int
	Offset  int
}

// Parse extracts and validates page/per_page from query parameters.
// "limit" is accepted as an alias for per_page.
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", c.DefaultQuery("limit", strconv.Itoa(DefaultPerPage))))

	if page < 1 {
		page = DefaultPage
	}
	if perPage < MinPerPage {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	return Params{
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
	}
}

// Meta is the pagination envelope returned alongside paginated lists.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
	PerPage     int   `json:"per_page"`
}

// NewMeta derives the envelope for a total row count.
func NewMeta(p Params, total int64) Meta {
	totalPages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	if totalPages < 1 {
		totalPages = 1
	}
	return Meta{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasNext:     p.Page < totalPages,
		HasPrevious: p.Page > 1,
		PerPage:     p.PerPage,
	}
}
