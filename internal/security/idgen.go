package security

import (
	"math/rand/v2"
	"strconv"
	"time"
)

// IDGenerator produces unique numeric identifiers for documents and token
// jti values. Injected into services so tests can fix the ids.
type IDGenerator interface {
	NextID() int64
}

// UniqueNumber generates 12-digit identifiers: a yyMMdd date prefix
// followed by the low digits of the current unix-millisecond clock. The
// date prefix keeps ids roughly sortable by creation day.
type UniqueNumber struct {
	now func() time.Time
}

func NewUniqueNumber() *UniqueNumber {
	return &UniqueNumber{now: time.Now}
}

// WithClock returns a copy of g using the given clock.
func (g *UniqueNumber) WithClock(now func() time.Time) *UniqueNumber {
	return &UniqueNumber{now: now}
}

const idDigits = 12

func (g *UniqueNumber) NextID() int64 {
	now := g.now().UTC()
	prefix := now.Format("060102")

	randomDigits := idDigits - len(prefix)
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	if len(millis) > randomDigits {
		millis = millis[len(millis)-randomDigits:]
	}

	numeric := prefix + millis
	for len(numeric) < idDigits {
		numeric += strconv.Itoa(rand.IntN(10))
	}

	// ids must not lead with a zero
	if numeric[0] == '0' {
		numeric = strconv.Itoa(rand.IntN(9)+1) + numeric[1:]
	}

	id, err := strconv.ParseInt(numeric, 10, 64)
	if err != nil {
		// unreachable: numeric is always 12 decimal digits
		return now.UnixMilli()
	}
	return id
}
