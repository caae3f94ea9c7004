// Package safe provides deferred-cleanup helpers that surface errors
// through logging instead of suppressing them.
package safe

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Close closes c, logging the error with the given message. Use in defer
// statements where the close error cannot change the caller's result.
func Close(c io.Closer, logger zerolog.Logger, msg string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn().Err(err).Msg(msg)
	}
}

// Remove removes the file at path, logging the error. Missing files are
// not an error: Remove is used to discard scratch output that may never
// have been created.
func Remove(path string, logger zerolog.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Str("path", path).Msg("failed to remove file")
	}
}
