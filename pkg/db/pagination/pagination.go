package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 250
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=50" validate:"gte=1,lte=250"`
}

type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type PageInfo struct {
	NextPageToken     string `json:"next_page_token"`
	PreviousPageToken string `json:"previous_page_token"`
	HasMore           bool   `json:"has_more"`
}

// Page is the list envelope shared by every entity endpoint. Items is never nil.
type Page[T any] struct {
	PageInfo
	Items []T `json:"items"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}

	return &cursor, nil
}

func BuildCursorPageInfo[T any](data []*T, limit int32, extractCursor func(*T) string) *PageInfo {
	if len(data) == 0 {
		return &PageInfo{HasMore: false}
	}

	hasMore := false
	if len(data) > int(limit) {
		hasMore = true
		data = data[:limit]
	}

	pageInfo := &PageInfo{
		HasMore: hasMore,
	}
	if hasMore {
		pageInfo.NextPageToken = extractCursor(data[len(data)-1])
	}

	return pageInfo
}

// NormalizeSize clamps a requested page size into [1, MaxPageSize].
func NormalizeSize(size int32) int32 {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// BuildPage trims the look-ahead row and converts rows with view.
func BuildPage[T any, V any](rows []*T, size int32, cursorOf func(*T) (string, time.Time), view func(*T) V) Page[V] {
	size = NormalizeSize(size)
	info := BuildCursorPageInfo(rows, size, func(row *T) string {
		id, createdAt := cursorOf(row)
		token, err := EncodeCursor(Cursor{ID: id, CreatedAt: createdAt.UTC().Format(time.RFC3339Nano)})
		if err != nil {
			return ""
		}
		return token
	})
	if len(rows) > int(size) {
		rows = rows[:size]
	}

	items := make([]V, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		items = append(items, view(row))
	}

	page := Page[V]{Items: items}
	if info != nil {
		page.PageInfo = *info
	}
	return page
}
