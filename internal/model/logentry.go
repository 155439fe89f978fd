package model

const (
	LogTypeSuccess = "success"
	LogTypeError   = "error"
)

// LogEntry is an in-memory note about the outcome of a store or parse operation.
type LogEntry struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewSuccessEntry(message string) LogEntry {
	return LogEntry{Type: LogTypeSuccess, Message: message}
}

func NewErrorEntry(message string) LogEntry {
	return LogEntry{Type: LogTypeError, Message: message}
}
