package utils

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxOffset bounds how far a client can page. Firestore encodes offsets
	// as int32.
	MaxOffset = math.MaxInt32
)

// PaginationParams is a validated page window over a result list.
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// GetPaginationParams reads ?page= and ?limit= from the request. Missing or
// malformed values fall back to the first page of DefaultPageSize items, and
// page is clamped so that Offset never exceeds MaxOffset.
func GetPaginationParams(c echo.Context) PaginationParams {
	return NewPaginationParams(c.QueryParam("page"), c.QueryParam("limit"))
}

func NewPaginationParams(pageParam, limitParam string) PaginationParams {
	pageSize := parsePositive(limitParam, DefaultPageSize)
	if pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	page := parsePositive(pageParam, 1)
	if lastPage := MaxOffset/pageSize + 1; page > lastPage {
		page = lastPage
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}

func parsePositive(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
