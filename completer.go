package lexicon

import "context"

// Completer sends a prompt to a language model and returns its text reply.
// Replies are best-effort; callers extract structure with ExtractJSON.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// AIStatus values.
const (
	AIStatusOK      = "ok"
	AIStatusSkipped = "skipped"
	AIStatusError   = "error"
)

// AIStatus records the outcome of an optional model-backed step.
type AIStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// AISkipped returns a skipped status with the given reason.
func AISkipped(reason string) AIStatus {
	return AIStatus{Status: AIStatusSkipped, Reason: reason}
}

// AIFailed returns an error status carrying the error's message.
func AIFailed(err error) AIStatus {
	return AIStatus{Status: AIStatusError, Reason: ErrorMessage(err)}
}

// AIOK returns a successful status.
func AIOK() AIStatus {
	return AIStatus{Status: AIStatusOK}
}

// ReasonNoCompleter is recorded when no completion service is configured.
const ReasonNoCompleter = "completion service not configured"
