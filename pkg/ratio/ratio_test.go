package ratio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, 66.7, Percent(2, 3))
	assert.Equal(t, 50.0, Percent(1, 2))
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.Equal(t, 0.0, Percent(5, -1))
	assert.Equal(t, 112.5, PercentOf(decimal.NewFromInt(450000), decimal.NewFromInt(400000)))
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(decimal.NewFromInt(10), 0))
	assert.Equal(t, 3.33, Mean(decimal.NewFromInt(10), 3))
}
