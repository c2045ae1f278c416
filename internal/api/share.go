package api

import (
	"fmt"
	"strings"
)

// ShareSummary validates a teammate address and returns the confirmation
// shown once the audit summary has been shared with it.
func ShareSummary(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return "", err
	}
	return fmt.Sprintf("AI Summary shared successfully! Sent to %s", email), nil
}
