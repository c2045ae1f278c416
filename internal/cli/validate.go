package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AditthyaSS/VulnExplain/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate an audit result or findings file",
	Long: `Validate checks that a JSON file is either an audit result (as returned
by the audit service or written by --store) or a findings list accepted by
'scan --findings'.

Returns exit 0 if valid, exit 2 if invalid with details on stderr.

Example:
  vulnexplain validate .vulnexplain/runs/2026-02-15T10-00-00-audit.json
  vulnexplain validate findings.json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	kind, err := validateDocument(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
		return &ValidationError{Message: err.Error()}
	}

	fmt.Printf("VALID: %s\n", kind)
	return nil
}

// validateDocument reports which document data holds.
func validateDocument(data []byte) (string, error) {
	doc, err := validator.New().ValidateDocument(data)
	if err != nil {
		return "", err
	}

	switch doc.Kind {
	case validator.KindFindings:
		return fmt.Sprintf("%s (%d findings)", doc.Kind, doc.Count()), nil
	default:
		return fmt.Sprintf("%s (%d vulnerabilities)", doc.Kind, doc.Count()), nil
	}
}
