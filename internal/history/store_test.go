package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuote_Escaping(t *testing.T) {
	assert.Equal(t, `'plain'`, quote("plain"))
	assert.Equal(t, `'back\\slash'`, quote(`back\slash`))
	assert.Equal(t, `'quo\'te'`, quote(`quo'te`))
}

func TestTimestamp_ZeroUsesCurrentTimestampFunction(t *testing.T) {
	assert.Equal(t, "current_timestamp()", timestamp(time.Time{}))
}

func TestTimestamp_FormatsUTC(t *testing.T) {
	ts := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "timestamp('2026-07-30 12:00:00')", timestamp(ts))
}
