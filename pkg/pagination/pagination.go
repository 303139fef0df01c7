package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a clamped page request. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Parse reads ?page= and ?limit= (or the front-end's ?page_size=). Garbage falls back to defaults.
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.Query("page"))
	raw := c.Query("limit")
	if raw == "" {
		raw = c.Query("page_size")
	}
	limit, _ := strconv.Atoi(raw)
	return New(page, limit)
}

func New(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

func (p Params) Offset() int { return (p.Page - 1) * p.Limit }

// TotalPages is the number of pages needed for total rows at limit rows per page
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
