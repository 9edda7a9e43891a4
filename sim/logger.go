// sim/logger.go
package sim

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// MaxLogMessage bounds a single run-log message in bytes, trailing newline
// included. Longer messages are truncated.
const MaxLogMessage = 16384

// ErrLogOpen is returned when the run log cannot be created.
var ErrLogOpen = errors.New("cannot open simulation log")

// Logger writes run-log lines to a log stream and, optionally, the console.
//
// It is distinct from the package-level logrus diagnostics: every line written
// here is part of the simulation record. Write failures on either sink are
// ignored and never stop the other sink.
type Logger struct {
	console *logrus.Logger // log stream + console
	file    *logrus.Logger // log stream only
	closer  io.Closer
}

// lineFormatter emits the raw message, bounded to limit bytes and terminated
// by exactly one newline.
type lineFormatter struct {
	limit int
}

func (f lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	msg := strings.TrimSuffix(e.Message, "\n")
	if len(msg) > f.limit-1 {
		msg = msg[:f.limit-1]
	}
	return append([]byte(msg), '\n'), nil
}

// fanout writes to every sink and reports success regardless of sink errors.
type fanout []io.Writer

func (f fanout) Write(p []byte) (int, error) {
	for _, w := range f {
		_, _ = w.Write(p)
	}
	return len(p), nil
}

func newLineLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(lineFormatter{limit: MaxLogMessage})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// NewLogger builds a Logger over an already open log stream. A nil console
// makes Logf equivalent to LogOnlyf.
func NewLogger(stream, console io.Writer) *Logger {
	both := fanout{stream}
	if console != nil {
		both = append(both, console)
	}
	return &Logger{
		console: newLineLogger(both),
		file:    newLineLogger(fanout{stream}),
	}
}

// OpenLogger opens (creating if needed) the log file at path in append mode.
// The returned error wraps ErrLogOpen.
func OpenLogger(path string, console io.Writer) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(ErrLogOpen, "%s: %v", path, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(ErrLogOpen, "%s: %v", path, err)
	}
	l := NewLogger(f, console)
	l.closer = f
	return l, nil
}

// Logf writes a line to the log stream and the console.
func (l *Logger) Logf(format string, args ...any) {
	l.console.Infof(format, args...)
}

// LogOnlyf writes a line to the log stream only.
func (l *Logger) LogOnlyf(format string, args ...any) {
	l.file.Infof(format, args...)
}

// Close closes the log file if the Logger owns one.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	c := l.closer
	l.closer = nil
	return c.Close()
}
