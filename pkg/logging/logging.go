package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var openFile = func(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// New builds the application logger. The terminal belongs to the UI, so
// output goes to path, or nowhere when path is empty.
func New(path, level string) (*log.Logger, io.Closer, error) {
	var (
		out    io.Writer = io.Discard
		closer io.Closer = io.NopCloser(nil)
	)
	if path != "" {
		f, err := openFile(path)
		if err != nil {
			return nil, nil, err
		}
		out, closer = f, f
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "price-tracker",
	})
	return logger, closer, nil
}
