// Package observability builds the process logger.
package observability

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a console logger tagged with app. An empty level means
// info. A nil w writes to stderr.
func NewLogger(app, level string, w io.Writer) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	lvl := zerolog.InfoLevel

	if s := strings.TrimSpace(level); s != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("observability: log level %q: %w", level, err)
		}

		lvl = parsed
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}

	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", app).Logger(), nil
}
