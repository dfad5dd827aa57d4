package outcome

import "time"

// Verdict is the answer of the email-validation webhook.
type Verdict string

const (
	VerdictValid   Verdict = "VALID"
	VerdictInvalid Verdict = "INVALID"
	VerdictUnknown Verdict = "UNKNOWN"
	VerdictError   Verdict = "ERROR"
)

// Validation is the terminal record for one email-validation call.
type Validation struct {
	Email     string    `json:"email"`
	Verdict   Verdict   `json:"status"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	Attributes map[string]any `json:"attributes,omitempty"`
}
