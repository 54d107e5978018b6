package enum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	allowed := []string{"Pending", "In Progress", "Completed"}

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "pending", want: "Pending", ok: true},
		{in: " IN_PROGRESS ", want: "In Progress", ok: true},
		{in: "in-progress", want: "In Progress", ok: true},
		{in: "done", ok: false},
		{in: "", ok: false},
	}
	for _, tc := range tests {
		got, ok := Canonical(tc.in, allowed...)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
