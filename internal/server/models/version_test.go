package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveVersionLabel(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "0.0.1"},
		{9, "0.0.9"},
		// Rolls over at the tens boundary instead of bumping a minor
		// component; legacy behavior kept on purpose.
		{10, "0.1.0"},
		{11, "0.1.1"},
		{57, "0.5.7"},
		{99, "0.9.9"},
		{100, "1.0.0"},
		{123, "1.2.3"},
		{999, "9.9.9"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveVersionLabel(tt.n), "n=%d", tt.n)
	}
}
