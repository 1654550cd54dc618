package billing

import (
	"time"

	"github.com/google/uuid"
)

// TimeEntry is a unit of billable work recorded against a matter.
type TimeEntry struct {
	ID          uuid.UUID
	FirmID      uuid.UUID
	MatterID    uuid.UUID
	UserID      int64
	Description string
	Minutes     int
	RateCents   int64
	EntryDate   time.Time
	CreatedAt   time.Time
}

// AmountCents prices the entry. Minutes are billed pro rata against the
// hourly rate, rounded half up to the cent.
func (e *TimeEntry) AmountCents() int64 {
	return LineAmountCents(e.Minutes, e.RateCents)
}

// LineAmountCents computes minutes * hourly rate / 60, rounded half up.
func LineAmountCents(minutes int, rateCents int64) int64 {
	total := int64(minutes) * rateCents
	return (total + 30) / 60
}

// InvoiceLine is one priced row of a draft invoice.
type InvoiceLine struct {
	EntryID     uuid.UUID `json:"entryId"`
	Description string    `json:"description"`
	Minutes     int       `json:"minutes"`
	RateCents   int64     `json:"rateCents"`
	AmountCents int64     `json:"amountCents"`
	EntryDate   string    `json:"entryDate"`
}

// InvoiceDraft aggregates a matter's unbilled time into a preview.
type InvoiceDraft struct {
	MatterID     uuid.UUID     `json:"matterId"`
	Lines        []InvoiceLine `json:"lines"`
	TotalMinutes int           `json:"totalMinutes"`
	TotalCents   int64         `json:"totalCents"`
}

// BuildInvoiceDraft prices the given entries into a draft.
func BuildInvoiceDraft(matterID uuid.UUID, entries []TimeEntry) InvoiceDraft {
	draft := InvoiceDraft{MatterID: matterID, Lines: make([]InvoiceLine, 0, len(entries))}
	for i := range entries {
		e := &entries[i]
		amount := e.AmountCents()
		draft.Lines = append(draft.Lines, InvoiceLine{
			EntryID:     e.ID,
			Description: e.Description,
			Minutes:     e.Minutes,
			RateCents:   e.RateCents,
			AmountCents: amount,
			EntryDate:   e.EntryDate.UTC().Format("2006-01-02"),
		})
		draft.TotalMinutes += e.Minutes
		draft.TotalCents += amount
	}
	return draft
}
