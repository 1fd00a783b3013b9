package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quarkgate/apikit/pkg/errors"
)

// TimeSlot is a deny window expressed as inclusive "HH:MM" bounds in local
// server time.
type TimeSlot struct {
	Start string
	End   string
}

// TimeSlots is the ordered collection of deny windows.
type TimeSlots []TimeSlot

// ParseTimeSlots parses a "HH:MM-HH:MM,HH:MM-HH:MM" configuration string.
// An empty string yields an empty set. A malformed slot is a configuration
// error, not something to skip silently.
func ParseTimeSlots(value string) (TimeSlots, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	slots := make(TimeSlots, 0, len(parts))
	for _, part := range parts {
		slot, err := parseTimeSlot(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func parseTimeSlot(value string) (TimeSlot, error) {
	start, end, found := strings.Cut(value, "-")
	if !found {
		return TimeSlot{}, fmt.Errorf("time slots configuration error: %q", value)
	}
	if len(start) != 5 || len(end) != 5 {
		return TimeSlot{}, fmt.Errorf("time slots configuration error: %q", value)
	}
	return TimeSlot{Start: start, End: end}, nil
}

// Contains reports whether the given "HH:MM" time falls inside any slot.
// Bounds are inclusive; zero-padded "HH:MM" strings compare correctly with
// plain lexicographic ordering.
func (s TimeSlots) Contains(now string) bool {
	for _, slot := range s {
		if slot.Start <= now && now <= slot.End {
			return true
		}
	}
	return false
}

// String renders the slots as "08:00 - 12:00, 13:00 - 17:00".
func (s TimeSlots) String() string {
	var b strings.Builder
	for i, slot := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(slot.Start)
		b.WriteString(" - ")
		b.WriteString(slot.End)
	}
	return b.String()
}

// TimeLimiter rejects requests arriving inside one of the configured deny
// windows with a 503 envelope naming the windows. An empty set never blocks.
func TimeLimiter(slots TimeSlots) gin.HandlerFunc {
	return timeLimiterAt(slots, func() string {
		return time.Now().Format("15:04")
	})
}

// timeLimiterAt allows tests to pin the clock.
func timeLimiterAt(slots TimeSlots, now func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slots.Contains(now()) {
			abortWithError(c, errors.ServiceUnavailable(
				fmt.Sprintf("Service unavailable during these times: %s", slots)))
			return
		}
		c.Next()
	}
}
