// Package inspect implements the CLI commands for working with saved
// profile documents.
package inspect

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/profiledb/profiledb/pkg/profiler"
)

// RegisterCommands adds the inspection subcommands to root.
func RegisterCommands(root *cobra.Command, logger zerolog.Logger) {
	root.AddCommand(newSummaryCmd(logger))
	root.AddCommand(newEventsCmd(logger))
	root.AddCommand(newValidateCmd(logger))
}

// loadDocument reads and parses a saved profile document.
func loadDocument(logger zerolog.Logger, path string) (*profiler.Document, error) {
	// #nosec G304 - the path is a CLI argument naming the file to inspect.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile document: %w", err)
	}

	doc, err := profiler.ParseDocument(data)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("path", path).
		Int("bytes", len(data)).
		Int("bytecodes", len(doc.Bytecodes)).
		Int("compilations", len(doc.Compilations)).
		Int("events", len(doc.Events)).
		Msg("Loaded profile document")
	return doc, nil
}

// addLimitFlag registers the shared --limit flag. Zero means no limit.
func addLimitFlag(fs *pflag.FlagSet, limit *int) {
	fs.IntVar(limit, "limit", 0, "maximum number of entries to print (0 = all)")
}

// unitName resolves the display name of a bytecodes entry by index.
func unitName(doc *profiler.Document, index int) string {
	if index < 0 || index >= len(doc.Bytecodes) {
		return fmt.Sprintf("<invalid:%d>", index)
	}
	if name, ok := doc.Bytecodes[index]["name"].(string); ok {
		return name
	}
	return fmt.Sprintf("<unnamed:%d>", index)
}
