package ports

// Intake defines the interface for a long-running source of inbound mail
type Intake interface {
	// Name identifies the intake in logs
	Name() string

	// Start starts the intake in the background
	Start() error

	// Stop stops the intake and waits for it to finish
	Stop() error
}
