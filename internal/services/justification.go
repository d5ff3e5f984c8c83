package services

import "strings"

// MinJustificationLen is the transparency floor for every privileged
// state-changing action: status changes, assignment, bid acceptance,
// moderation, proof review, contractor block/unblock. The threshold is a
// policy choice, enforced identically everywhere.
const MinJustificationLen = 10

func validateJustification(j string) error {
	if len(strings.TrimSpace(j)) < MinJustificationLen {
		return ErrJustificationTooShort
	}
	return nil
}

// RequestMeta carries optional request context into the audit ledger.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
