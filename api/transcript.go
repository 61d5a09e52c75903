package api

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// The transcript is a deterministic append-only log of every
// constructive API call, sufficient to rebuild the identical problem in
// a fresh solver. Literals are recorded in DIMACS form over external
// ids (variable + 1, negated as negative); every write is flushed so
// the log stays replayable after a crash.
type transcript struct {
	file *os.File
	buf  *bufio.Writer
}

func (w *transcript) open(path string, header string) error {
	w.close()
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not open transcript %q", path)
	}
	w.file = f
	w.buf = bufio.NewWriter(f)
	if header != "" {
		return w.writef("%s", header)
	}
	return nil
}

func (w *transcript) close() {
	if w.file != nil {
		w.buf.Flush()
		w.file.Close()
		w.file = nil
		w.buf = nil
	}
}

func (w *transcript) active() bool { return w.file != nil }

func (w *transcript) writef(format string, args ...interface{}) error {
	if w.file == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w.buf, format, args...); err != nil {
		return errors.Wrap(err, "failed to write transcript")
	}
	return errors.Wrap(w.buf.Flush(), "failed to write transcript")
}
