package elan

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Reporter writes protocol status lines. It is safe for concurrent use.
type Reporter struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewReporter creates a Reporter writing to w
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Progress reports a fraction in [0, 1] with a short description
func (r *Reporter) Progress(fraction float64, msg string) {
	fraction = max(0, min(1, fraction))
	r.printf("PROGRESS: %.2f %s\n", fraction, oneLine(msg))
}

// Done reports successful completion
func (r *Reporter) Done() {
	r.printf("RESULT: DONE.\n")
}

// Failed reports failure with the error message
func (r *Reporter) Failed(err error) {
	r.printf("RESULT: FAILED. %s\n", oneLine(err.Error()))
}

// Err returns the first write error, if any
func (r *Reporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
