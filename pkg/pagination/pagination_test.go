package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func parseQuery(t *testing.T, rawQuery string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return Parse(c)
}

func TestParse(t *testing.T) {
	cases := []struct {
		query     string
		page, per int
		offset    int
	}{
		{"", 1, 20, 0},
		{"page=3&per_page=10", 3, 10, 20},
		{"page=2&limit=15", 2, 15, 15}, // limit is an alias
		{"page=0", 1, 20, 0},
		{"page=-4&per_page=-1", 1, 20, 0},
		{"per_page=500", 1, 100, 0}, // clamped
		{"page=abc&per_page=xyz", 1, 20, 0},
	}
	for _, tc := range cases {
		p := parseQuery(t, tc.query)
		if p.Page != tc.page || p.PerPage != tc.per || p.Offset != tc.offset {
			t.Fatalf("Parse(%q) = %+v, want page=%d per=%d offset=%d", tc.query, p, tc.page, tc.per, tc.offset)
		}
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(Params{Page: 2, PerPage: 10}, 35)
	if meta.TotalPages != 4 || meta.TotalCount != 35 {
		t.Fatalf("meta = %+v", meta)
	}
	if !meta.HasNext || !meta.HasPrevious {
		t.Fatalf("page 2 of 4 must have both neighbors: %+v", meta)
	}

	meta = NewMeta(Params{Page: 1, PerPage: 10}, 0)
	if meta.TotalPages != 1 || meta.HasNext || meta.HasPrevious {
		t.Fatalf("empty result meta = %+v", meta)
	}

	meta = NewMeta(Params{Page: 4, PerPage: 10}, 40)
	if meta.HasNext || !meta.HasPrevious {
		t.Fatalf("last page meta = %+v", meta)
	}
}
