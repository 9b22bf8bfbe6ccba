package models

// Credit ledger operations published as events.
const (
	CreditOperationDebit = "debit"
	CreditOperationSet   = "set"
)

// CreditEvent describes a committed change of a user's credit balance.
type CreditEvent struct {
	EventID   string `json:"event_id"`  // EventID is a unique identifier for the event.
	Timestamp int64  `json:"timestamp"` // Timestamp is the Unix timestamp (in seconds) of the change.
	UserID    string `json:"user_id"`   // UserID is the owner of the balance.
	Operation string `json:"operation"` // Operation is "debit" or "set".
	Amount    int    `json:"amount"`    // Amount debited, or the new value for "set".
	Balance   int    `json:"balance"`   // Balance after the change.
}
