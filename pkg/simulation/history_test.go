package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryEvictsOldest(t *testing.T) {
	h := newHistory(3)
	assert.Empty(t, h.items())

	for _, id := range []string{"1", "2", "3", "4", "5"} {
		h.push(FieldState{FieldID: id})
	}

	require.Len(t, h.items(), 3)
	var ids []string
	for _, s := range h.items() {
		ids = append(ids, s.FieldID)
	}
	assert.Equal(t, []string{"3", "4", "5"}, ids)
}

func TestHourOfDay(t *testing.T) {
	ts := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	assert.InDelta(t, 14.5, HourOfDay(ts), 1e-9)
}
