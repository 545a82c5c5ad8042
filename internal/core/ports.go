package core

import (
	"context"
)

// Gateway defines the interface for a single-shot text completion call.
// Implementations return the cleaned completion text, or an error wrapping
// ErrGatewayFailure.
type Gateway interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// RecordRepository defines the interface for storing triaged records
type RecordRepository interface {
	// Save inserts or replaces a record
	Save(ctx context.Context, record *Record) error

	// Get retrieves a record by ID, returning ErrRecordNotFound if absent
	Get(ctx context.Context, id string) (*Record, error)

	// List returns every stored record in no particular order
	List(ctx context.Context) ([]*Record, error)

	// Delete removes a record
	Delete(ctx context.Context, id string) error
}

// Triager turns a message into a TriageResult
type Triager interface {
	Triage(ctx context.Context, msg *Message) (*TriageResult, error)
}

// MessageFilter decides whether a message belongs in the inbox
type MessageFilter interface {
	IsSupportMessage(msg *Message) bool
}

// Mailer delivers an operator-approved reply
type Mailer interface {
	Send(ctx context.Context, reply *Reply) error
}
