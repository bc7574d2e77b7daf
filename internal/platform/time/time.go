// Package time contains time related helpers
package time

import "time"

// Ptr returns a pointer to t or nil if t is zero. Optional timestamps like an
// EDR's creation time must serialize as absent rather than 0001-01-01
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
