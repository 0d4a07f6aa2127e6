package service

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNumber_Format(t *testing.T) {
	now := time.Date(2025, time.March, 7, 14, 30, 0, 0, time.UTC)

	pattern := regexp.MustCompile(`^RS-20250307-[0-9A-Z]{5}$`)
	for i := 0; i < 100; i++ {
		n := GenerateOrderNumber(now)
		require.True(t, pattern.MatchString(n), "unexpected order number %q", n)
	}
}

func TestGenerateOrderNumber_EmbedsDate(t *testing.T) {
	n := GenerateOrderNumber(time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, "RS-20241231-", n[:12])
}

func TestGenerateOrderNumber_SuffixVaries(t *testing.T) {
	now := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[GenerateOrderNumber(now)] = true
	}
	// 36^5 suffixes; 50 draws colliding down to one value would mean the
	// randomness source is broken.
	assert.Greater(t, len(seen), 1)
}
