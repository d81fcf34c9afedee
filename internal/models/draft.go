package models

// GiftDraft is the not-yet-committed gift a sender carries between the
// compose and confirm steps. Exactly one draft exists per session; composing
// again overwrites the slot.
type GiftDraft struct {
	EventID       string `json:"event_id"`
	PerformerID   string `json:"performer_id"`
	PerformerName string `json:"performer_name"`
	Amount        string `json:"amount"`
	Comment       string `json:"comment"`
}
