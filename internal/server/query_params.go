package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/crm/pkg/timeutil"
)

// listQuery holds the query parameters shared by every list endpoint.
type listQuery struct {
	PageToken   string `form:"page_token"`
	PageSize    int32  `form:"page_size"`
	Search      string `form:"search"`
	CreatedFrom string `form:"created_from"`
	CreatedTo   string `form:"created_to"`
}

func (q listQuery) createdRange() (*time.Time, *time.Time, error) {
	from, err := parseOptionalTime(q.CreatedFrom, false)
	if err != nil {
		return nil, nil, newValidationError("created_from", "invalid_created_from", "invalid created_from")
	}
	to, err := parseOptionalTime(q.CreatedTo, true)
	if err != nil {
		return nil, nil, newValidationError("created_to", "invalid_created_to", "invalid created_to")
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, newValidationError("created_to", "invalid_date_range", "created_to must not be before created_from")
	}
	return from, to, nil
}

func (q listQuery) pageToken() string {
	return strings.TrimSpace(q.PageToken)
}

func (q listQuery) search() string {
	return strings.TrimSpace(q.Search)
}

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalInt64(value string) (*int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	return timeutil.ParseOptional(value, endOfDay)
}
