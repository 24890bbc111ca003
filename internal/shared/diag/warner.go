package diag

import (
	"fmt"
	"io"
	"sync"

	"importgraph/internal/shared/observability"
)

// Warner writes one text line per diagnostic and suppresses repeats.
//
// Every warning carries a caller-supplied key; a key that has already been
// reported is silently dropped, so a condition is never reported twice within
// one run. A Warner is created per analysis pass and handed explicitly to
// every consumer.
type Warner struct {
	mu   sync.Mutex
	out  io.Writer
	seen map[string]struct{}
}

func NewWarner(out io.Writer) *Warner {
	return &Warner{
		out:  out,
		seen: make(map[string]struct{}),
	}
}

// Warn emits a single formatted line unless key was already reported.
func (w *Warner) Warn(key, format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.seen[key]; ok {
		return
	}
	w.seen[key] = struct{}{}

	fmt.Fprintf(w.out, format+"\n", args...)
	observability.WarningsTotal.Inc()
}

// Warned reports whether key has already been emitted.
func (w *Warner) Warned(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.seen[key]
	return ok
}
