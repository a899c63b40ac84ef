package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ParseIDParam reads a positive numeric path parameter. On failure it writes a
// 400 response and returns false.
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		RespondError(c, NewBadRequestError(fmt.Sprintf("invalid %s", name)))
		return 0, false
	}
	return uint(id), true
}

// ParsePagination reads page and limit, defaulting to 1 and DefaultPageLimit.
func ParsePagination(c *gin.Context) (int, int, bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		RespondError(c, NewBadRequestError("invalid page number"))
		return 0, 0, false
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageLimit)))
	if err != nil || limit < 1 || limit > MaxPageLimit {
		RespondError(c, NewBadRequestError(fmt.Sprintf("limit must be between 1 and %d", MaxPageLimit)))
		return 0, 0, false
	}
	return page, limit, true
}

// ParseTimeQuery reads an optional RFC 3339 query parameter.
func ParseTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw, exists := c.GetQuery(name)
	if !exists || raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		RespondError(c, NewValidationError(map[string][]string{name: {"must be an RFC 3339 date"}}))
		return nil, false
	}
	return &t, true
}

// ParseDateRange reads start_date and end_date.
func ParseDateRange(c *gin.Context) (*time.Time, *time.Time, bool) {
	start, ok := ParseTimeQuery(c, "start_date")
	if !ok {
		return nil, nil, false
	}
	end, ok := ParseTimeQuery(c, "end_date")
	if !ok {
		return nil, nil, false
	}
	return start, end, true
}
