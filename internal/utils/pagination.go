package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkondo/notes-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// GetPaginationParams extracts and validates limit/offset from the request
func GetPaginationParams(c *gin.Context) PaginationParams {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return PaginationParams{
		Limit:  limit,
		Offset: offset,
	}
}
