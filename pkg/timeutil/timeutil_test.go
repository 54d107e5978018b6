package timeutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptional(t *testing.T) {
	got, err := ParseOptional("  ", false)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseOptional("2025-03-04", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), *got)

	got, err = ParseOptional("2025-03-04", true)
	require.NoError(t, err)
	assert.Equal(t, 23, got.Hour())
	assert.Equal(t, 4, got.Day())

	got, err = ParseOptional("2025-03-04T10:00:00+05:30", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 4, 30, 0, 0, time.UTC), *got)

	_, err = ParseOptional("04/03/2025", false)
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2025, 3, 4, 18, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}

func TestDateUnmarshal(t *testing.T) {
	var req struct {
		Due   *Date `json:"due"`
		Empty *Date `json:"empty"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2025-05-06","empty":""}`), &req))
	require.NotNil(t, req.Due.Ptr())
	assert.Equal(t, time.Date(2025, 5, 6, 0, 0, 0, 0, time.UTC), *req.Due.Ptr())
	assert.Nil(t, req.Empty.Ptr())

	var missing *Date
	assert.Nil(t, missing.Ptr())

	err := json.Unmarshal([]byte(`{"due":"06/05/2025"}`), &req)
	assert.ErrorIs(t, err, ErrInvalidTime)
}
