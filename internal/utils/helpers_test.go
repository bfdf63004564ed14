package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanPayeeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Swiggy", "Swiggy"},
		{"POS AMAZON RETAIL 4431", "AMAZON RETAIL"},
		{"upi-rahul kumar", "rahul kumar"},
		{"  Zomato 99  ", "Zomato"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanPayeeName(tt.in))
		})
	}
}

func TestStripRailPrefix(t *testing.T) {
	assert.Equal(t, "AMAZON RETAIL 4431", StripRailPrefix("POS AMAZON RETAIL 4431"))
	assert.Equal(t, "Studio 54", StripRailPrefix(" Studio 54 "))
	assert.Equal(t, "9876543210", StripRailPrefix("UPI/9876543210"))
	assert.Equal(t, "", StripRailPrefix(""))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("rs 500 debited", "credited", "debited"))
	assert.False(t, Contains("your otp is 1234", "debited", "paid"))
	assert.False(t, Contains("anything"))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "HDFC Bank: Rs 500 debited", CollapseWhitespace("  HDFC Bank:\n Rs  500\tdebited "))
	assert.Equal(t, "", CollapseWhitespace(" \n\t "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "abcde", Truncate("abcdefgh", 5))
	assert.Equal(t, "₹₹", Truncate("₹₹₹", 2))
}
