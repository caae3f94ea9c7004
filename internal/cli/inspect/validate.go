package inspect

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// newValidateCmd creates the validate command.
func newValidateCmd(logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a saved profile document's structural invariants",
		Long: `Check a saved profile document's structural invariants.

Verifies that the document parses, that bytecodes entries carry contiguous
indices in append order, and that every event references an in-range
bytecodes entry and (when present) an in-range compilation entry.

Exits non-zero if the document is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(logger, args[0])
			if err != nil {
				return err
			}
			if err := doc.Validate(); err != nil {
				return err
			}
			cmd.Printf("%s: valid (%d bytecodes, %d compilations, %d events)\n",
				args[0], len(doc.Bytecodes), len(doc.Compilations), len(doc.Events))
			return nil
		},
	}
}
