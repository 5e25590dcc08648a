package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatusCaseInsensitive(t *testing.T) {
	tests := map[string]string{
		"pending":    OrderStatusPending,
		"PENDING":    OrderStatusPending,
		"Processing": OrderStatusProcessing,
		"completed":  OrderStatusCompleted,
		"cancelled":  OrderStatusCancelled,
	}
	for raw, want := range tests {
		got, ok := ParseOrderStatus(raw)
		assert.True(t, ok, "expected %q to parse", raw)
		assert.Equal(t, want, got)
	}
}

func TestParseOrderStatusRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"", "shipped", "Pend", "done"} {
		_, ok := ParseOrderStatus(raw)
		assert.False(t, ok, "expected %q to be rejected", raw)
	}
}
