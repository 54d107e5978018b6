package option

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type QueryOptionFunc func(db *gorm.DB) *gorm.DB

func (f QueryOptionFunc) Apply(db *gorm.DB) *gorm.DB {
	return f(db)
}

type Operator string

const (
	EQ   Operator = "="
	NEQ  Operator = "<>"
	GT   Operator = ">"
	GTE  Operator = ">="
	LT   Operator = "<"
	LTE  Operator = "<="
	IN   Operator = "IN"
	LIKE Operator = "LIKE"
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// ApplyOperator adds a single WHERE condition. Unknown operators are ignored.
func ApplyOperator(cond Condition) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		field := strings.TrimSpace(cond.Field)
		if field == "" {
			return db
		}
		switch cond.Operator {
		case EQ, NEQ, GT, GTE, LT, LTE:
			return db.Where(fmt.Sprintf("%s %s ?", field, cond.Operator), cond.Value)
		case IN:
			return db.Where(fmt.Sprintf("%s IN ?", field), cond.Value)
		case LIKE:
			return db.Where(fmt.Sprintf("LOWER(%s) LIKE ?", field), "%"+strings.ToLower(fmt.Sprint(cond.Value))+"%")
		default:
			return db
		}
	})
}

// WithSearch matches term case-insensitively against any of the columns.
func WithSearch(term string, columns ...string) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		like := "%" + strings.ToLower(term) + "%"
		clauses := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, column := range columns {
			clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE ?", column))
			args = append(args, like)
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	})
}

// WithDateRange bounds column by the optional from/to instants.
func WithDateRange(column string, from, to *time.Time) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where(fmt.Sprintf("%s >= ?", column), from.UTC())
		}
		if to != nil {
			db = db.Where(fmt.Sprintf("%s <= ?", column), to.UTC())
		}
		return db
	})
}

type QuerySortBy struct {
	SortBy  string
	OrderBy string
	Allow   map[string]bool
}

func WithQuerySortBy(sortBy, orderBy string, allow map[string]bool) QuerySortBy {
	return QuerySortBy{SortBy: sortBy, OrderBy: orderBy, Allow: allow}
}

// WithSortBy orders by an allowlisted column, falling back to newest first.
func WithSortBy(sort QuerySortBy) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		column := strings.ToLower(strings.TrimSpace(sort.SortBy))
		if column == "" || !sort.Allow[column] {
			return db.Order("created_at desc, id desc")
		}
		direction := "asc"
		if strings.EqualFold(strings.TrimSpace(sort.OrderBy), "desc") {
			direction = "desc"
		}
		return db.Order(fmt.Sprintf("%s %s, id %s", column, direction, direction))
	})
}

// ApplyPagination applies keyset pagination on (created_at, id) and fetches
// one extra row so callers can detect a following page.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if token := strings.TrimSpace(page.PageToken); token != "" {
			if cursor, err := pagination.DecodeCursor(token); err == nil {
				createdAt, timeErr := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
				id, idErr := strconv.ParseInt(strings.TrimSpace(cursor.ID), 10, 64)
				if timeErr == nil && idErr == nil {
					db = db.Where("((created_at < ?) OR (created_at = ? AND id < ?))", createdAt, createdAt, id)
				}
			}
		}
		size := page.PageSize
		if size <= 0 {
			size = pagination.DefaultPageSize
		}
		if size > pagination.MaxPageSize {
			size = pagination.MaxPageSize
		}
		return db.Limit(size + 1)
	})
}

// Equal filters field = value, skipping empty strings and nil IDs.
func Equal(field string, value any) QueryOption {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return QueryOptionFunc(func(db *gorm.DB) *gorm.DB { return db })
		}
	case *snowflake.ID:
		if v == nil {
			return QueryOptionFunc(func(db *gorm.DB) *gorm.DB { return db })
		}
		value = *v
	case nil:
		return QueryOptionFunc(func(db *gorm.DB) *gorm.DB { return db })
	}
	return ApplyOperator(Condition{Field: field, Operator: EQ, Value: value})
}
