package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Header holds the VCD preamble fields.
type Header struct {
	Date      string
	Version   string
	Timescale string // e.g. "1ps"
}

// DefaultHeader returns the header used by the command-line driver.
func DefaultHeader(date string) Header {
	return Header{Date: date, Version: "vsim", Timescale: "1ps"}
}

type boundSignal struct {
	Signal
	id    string
	last  uint64
	known bool
}

// Writer records signal values as a Value Change Dump.
//
// Usage follows the capture lifecycle: NewWriter, Bind, Open, Dump per
// timestamp, Close. Writer is not safe for concurrent use.
type Writer struct {
	format Format
	header Header

	signals []*boundSignal
	bound   bool

	path    string
	out     *bufio.Writer
	closers []io.Closer // closed in order: encoder first, then file
	open    bool

	dumps    int
	changes  int
	lastTime uint64
}

// NewWriter returns a Writer for the given format.
func NewWriter(format Format, header Header) (*Writer, error) {
	if !validFormats[format] {
		return nil, errors.Errorf("trace: unknown format %q", format)
	}
	if header.Timescale == "" {
		header.Timescale = "1ps"
	}
	return &Writer{format: format, header: header}, nil
}

// Format returns the writer's encoding.
func (w *Writer) Format() Format { return w.format }

// Bind attaches the signals of src whose scope is at most depth levels deep.
// It must be called before Open, and only while tracing is enabled (EverOn).
func (w *Writer) Bind(src Source, depth int) error {
	if !IsEverOn() {
		return ErrNotEverOn
	}
	if w.open {
		return errors.New("trace: Bind after Open")
	}
	if depth < 1 {
		return errors.Errorf("trace: depth must be >= 1, got %d", depth)
	}
	w.signals = w.signals[:0]
	for _, s := range src.Signals() {
		if len(s.Scope) > depth {
			continue
		}
		if s.Width < 1 || s.Width > 64 {
			return errors.Errorf("trace: signal %s has invalid width %d", s.Name, s.Width)
		}
		w.signals = append(w.signals, &boundSignal{Signal: s, id: idCode(len(w.signals))})
	}
	w.bound = true
	return nil
}

// Open creates the trace file at path and writes the VCD header.
func (w *Writer) Open(path string) error {
	if w.open {
		return errors.Errorf("trace: %s already open", w.path)
	}
	if !w.bound {
		return errors.New("trace: Open before Bind")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "trace: create directory for %s", path)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "trace: open %s", path)
	}
	var sink io.Writer = f
	closers := []io.Closer{f}
	if w.format == FormatCompact {
		enc, err := zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return errors.Wrap(err, "trace: zstd encoder")
		}
		sink = enc
		closers = []io.Closer{enc, f}
	}
	w.path = path
	w.out = bufio.NewWriter(sink)
	w.closers = closers
	w.open = true
	w.writeHeader()
	return nil
}

func (w *Writer) writeHeader() {
	fmt.Fprintf(w.out, "$date\n\t%s\n$end\n", w.header.Date)
	fmt.Fprintf(w.out, "$version\n\t%s\n$end\n", w.header.Version)
	fmt.Fprintf(w.out, "$timescale\n\t%s\n$end\n", w.header.Timescale)

	var stack []string
	for _, s := range w.signals {
		common := 0
		for common < len(stack) && common < len(s.Scope) && stack[common] == s.Scope[common] {
			common++
		}
		for len(stack) > common {
			w.out.WriteString("$upscope $end\n")
			stack = stack[:len(stack)-1]
		}
		for _, name := range s.Scope[common:] {
			fmt.Fprintf(w.out, "$scope module %s $end\n", name)
			stack = append(stack, name)
		}
		if s.Width == 1 {
			fmt.Fprintf(w.out, "$var wire 1 %s %s $end\n", s.id, s.Name)
		} else {
			fmt.Fprintf(w.out, "$var wire %d %s %s [%d:0] $end\n", s.Width, s.id, s.Name, s.Width-1)
		}
	}
	for range stack {
		w.out.WriteString("$upscope $end\n")
	}
	w.out.WriteString("$enddefinitions $end\n")
}

// Dump samples every bound signal at timestamp ts. Only values that changed
// since the previous dump are written; the first dump writes all of them.
func (w *Writer) Dump(ts uint64) error {
	if !w.open {
		return ErrNotOpen
	}
	w.dumps++
	w.lastTime = ts
	stamped := false
	for _, s := range w.signals {
		v := mask(s.Value(), s.Width)
		if s.known && v == s.last {
			continue
		}
		if !stamped {
			fmt.Fprintf(w.out, "#%d\n", ts)
			stamped = true
		}
		s.last, s.known = v, true
		w.changes++
		if s.Width == 1 {
			fmt.Fprintf(w.out, "%d%s\n", v, s.id)
		} else {
			fmt.Fprintf(w.out, "b%s %s\n", strconv.FormatUint(v, 2), s.id)
		}
	}
	return nil
}

// Close flushes and closes the trace file. Closing a writer that is not open
// is a no-op.
func (w *Writer) Close() error {
	if !w.open {
		return nil
	}
	w.open = false
	err := w.out.Flush()
	for _, c := range w.closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	w.closers = nil
	return errors.Wrapf(err, "trace: close %s", w.path)
}

func mask(v uint64, width int) uint64 {
	if width >= 64 {
		return v
	}
	return v & (1<<uint(width) - 1)
}

// idCode returns the VCD identifier for the n-th signal: printable ASCII from
// '!' to '~', least significant character first.
func idCode(n int) string {
	var b []byte
	for {
		b = append(b, byte('!'+n%94))
		n /= 94
		if n == 0 {
			break
		}
		n--
	}
	return string(b)
}
