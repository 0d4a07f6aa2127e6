package service

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	orderNumberPrefix = "RS"

	// orderNumberAlphabet is base36, uppercased. Five characters give
	// 36^5 ≈ 60M combinations per day, so storage-level uniqueness
	// violations stay rare and are handled by bounded retry.
	orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	orderNumberSuffix   = 5

	// maxOrderNumberAttempts bounds regeneration when the storage layer
	// reports a uniqueness conflict on insert.
	maxOrderNumberAttempts = 3
)

// GenerateOrderNumber produces a human-readable unique order identifier of
// the form RS-<YYYYMMDD>-<5 base36 chars>, e.g. RS-20250131-7KQ2M.
//
// Invoked at creation only; an assigned order number is immutable. The
// caller regenerates on a uniqueness conflict, up to maxOrderNumberAttempts.
func GenerateOrderNumber(now time.Time) string {
	buf := make([]byte, orderNumberSuffix)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure means the platform RNG is broken; nothing
		// sensible to fall back to.
		panic(fmt.Sprintf("order number generation: %v", err))
	}
	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", orderNumberPrefix, now.Format("20060102"), buf)
}
