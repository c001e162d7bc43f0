package domain

import "time"

// Dispute is a counterparty's objection to a debt. It never changes the balance.
type Dispute struct {
	ID             string
	DebtID         string
	RaisedBy       string
	Reason         string
	Message        string
	CreatedAt      time.Time
	ResolvedAt     *time.Time
	ResolvedBy     string
	ResolutionNote string
}

// IsOpen reports whether the dispute awaits resolution.
func (d *Dispute) IsOpen() bool {
	return d.ResolvedAt == nil
}

// Resolve closes the dispute.
func (d *Dispute) Resolve(actor Actor, note string, at time.Time) error {
	if !d.IsOpen() {
		return ErrDisputeResolved
	}

	resolvedAt := at
	d.ResolvedAt = &resolvedAt
	d.ResolvedBy = actor.ID
	d.ResolutionNote = note

	return nil
}
