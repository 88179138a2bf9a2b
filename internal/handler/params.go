package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// pageParams reads the skip/limit query parameters used by list
// endpoints. Bad or missing values fall back to skip=0, limit=10; the
// limit is capped so a single request cannot drag the whole table.
func pageParams(c echo.Context) (skip, limit int) {
	skip = 0
	limit = defaultPageLimit
	if v := c.QueryParam("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return skip, limit
}

// pathID parses the named path parameter as an unsigned integer id.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
