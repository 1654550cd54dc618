package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineAmountCents(t *testing.T) {
	cases := []struct {
		name      string
		minutes   int
		rateCents int64
		want      int64
	}{
		{"full hour", 60, 25000, 25000},
		{"half hour", 30, 25000, 12500},
		{"six minutes", 6, 25000, 2500},
		{"one minute rounds half up", 1, 100, 2},
		{"zero minutes", 0, 25000, 0},
		{"zero rate", 45, 0, 0},
		{"odd split rounds up", 7, 333, 39},
		{"odd split rounds down", 7, 300, 35},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LineAmountCents(tc.minutes, tc.rateCents))
		})
	}
}

func TestBuildInvoiceDraftTotals(t *testing.T) {
	matterID := uuid.New()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	entries := []TimeEntry{
		{ID: uuid.New(), MatterID: matterID, Description: "Draft complaint", Minutes: 90, RateCents: 25000, EntryDate: day},
		{ID: uuid.New(), MatterID: matterID, Description: "Client call", Minutes: 18, RateCents: 25000, EntryDate: day.AddDate(0, 0, 1)},
	}

	draft := BuildInvoiceDraft(matterID, entries)

	require.Len(t, draft.Lines, 2)
	assert.Equal(t, matterID, draft.MatterID)
	assert.Equal(t, 108, draft.TotalMinutes)
	assert.Equal(t, int64(37500+7500), draft.TotalCents)
	assert.Equal(t, "2026-03-14", draft.Lines[0].EntryDate)
	assert.Equal(t, "2026-03-15", draft.Lines[1].EntryDate)
	assert.Equal(t, int64(37500), draft.Lines[0].AmountCents)
}

func TestBuildInvoiceDraftEmpty(t *testing.T) {
	draft := BuildInvoiceDraft(uuid.New(), nil)

	assert.NotNil(t, draft.Lines)
	assert.Empty(t, draft.Lines)
	assert.Zero(t, draft.TotalMinutes)
	assert.Zero(t, draft.TotalCents)
}

func TestDraftTotalMatchesLineSum(t *testing.T) {
	// Per-line rounding means the total must be the sum of rounded
	// lines, not a rounding of the raw sum.
	matterID := uuid.New()
	entries := []TimeEntry{
		{ID: uuid.New(), Minutes: 1, RateCents: 100},
		{ID: uuid.New(), Minutes: 1, RateCents: 100},
		{ID: uuid.New(), Minutes: 1, RateCents: 100},
	}

	draft := BuildInvoiceDraft(matterID, entries)

	var sum int64
	for _, line := range draft.Lines {
		sum += line.AmountCents
	}
	assert.Equal(t, sum, draft.TotalCents)
	assert.Equal(t, int64(6), draft.TotalCents)
}
