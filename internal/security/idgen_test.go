package security_test

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/josmejia2401/jac-vision/internal/security"
)

func TestNextID_TwelveDigitsWithDatePrefix(t *testing.T) {
	at := time.Date(2026, 3, 15, 10, 30, 0, 500e6, time.UTC)
	gen := security.NewUniqueNumber().WithClock(func() time.Time { return at })

	id := gen.NextID()
	digits := strconv.FormatInt(id, 10)

	assert.Len(t, digits, 12)
	assert.True(t, strings.HasPrefix(digits, "260315"), "id %s should start with the yyMMdd prefix", digits)
}

func TestNextID_NeverLeadsWithZero(t *testing.T) {
	// a date in 2007 produces a "07..." prefix that must be rewritten
	at := time.Date(2007, 1, 2, 3, 4, 5, 0, time.UTC)
	gen := security.NewUniqueNumber().WithClock(func() time.Time { return at })

	for i := 0; i < 50; i++ {
		digits := strconv.FormatInt(gen.NextID(), 10)
		assert.Len(t, digits, 12)
		assert.NotEqual(t, byte('0'), digits[0])
	}
}
