package internal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gokit/rxkit"
)

// TLog implements the rxkit.Logs interface, printing
// out level and message of every log event.
type TLog struct {
	W io.Writer
}

// Emit prints the level and message of the log event, it implements
// rxkit.Logs Emit method.
func (t TLog) Emit(l rxkit.Level, e rxkit.LogMessage) {
	w := t.W
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "[%s : %s] %s\n", time.Now().Format(time.RFC3339), l, e.Message())
}

// Entry is a single log event captured by RecordLogs.
type Entry struct {
	Level   rxkit.Level
	Message string
}

// RecordLogs implements the rxkit.Logs interface, keeping every
// emitted event in order for later inspection.
type RecordLogs struct {
	ml      sync.Mutex
	entries []Entry
}

// Emit records the event.
func (r *RecordLogs) Emit(l rxkit.Level, e rxkit.LogMessage) {
	r.ml.Lock()
	defer r.ml.Unlock()
	r.entries = append(r.entries, Entry{Level: l, Message: e.Message()})
}

// Entries returns a copy of all recorded events.
func (r *RecordLogs) Entries() []Entry {
	r.ml.Lock()
	defer r.ml.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Messages returns the messages of all recorded events.
func (r *RecordLogs) Messages() []string {
	r.ml.Lock()
	defer r.ml.Unlock()

	messages := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		messages = append(messages, entry.Message)
	}
	return messages
}

// Reset drops all recorded events.
func (r *RecordLogs) Reset() {
	r.ml.Lock()
	defer r.ml.Unlock()
	r.entries = nil
}
