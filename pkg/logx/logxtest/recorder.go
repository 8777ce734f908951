// Package logxtest provides a logx.Logger that records entries in memory for assertions.
package logxtest

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/marcodd23/go-txscope/pkg/logx"
)

// Level of a recorded entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelPanic Level = "panic"
	LevelFatal Level = "fatal"
)

// Entry - a recorded log call.
type Entry struct {
	Level   Level
	Message string
	Errs    []error
}

// Recorder - in-memory logx.Logger, safe for concurrent use.
// LogPanic panics like the real logger, LogFatal only records.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Install sets a new Recorder as the process logger for the duration of the test.
func Install(t testing.TB) *Recorder {
	t.Helper()

	r := &Recorder{}
	logx.SetLogger(r)
	t.Cleanup(func() { logx.SetLogger(nil) })

	return r
}

func (r *Recorder) record(level Level, msg string, errs []error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, Entry{Level: level, Message: msg, Errs: errs})
}

// Entries returns a copy of the recorded entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Entry(nil), r.entries...)
}

// Count returns how many entries at level contain substr.
func (r *Recorder) Count(level Level, substr string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			n++
		}
	}

	return n
}

func (r *Recorder) LogInfo(_ context.Context, msg string)  { r.record(LevelInfo, msg, nil) }
func (r *Recorder) LogDebug(_ context.Context, msg string) { r.record(LevelDebug, msg, nil) }

func (r *Recorder) LogWarning(_ context.Context, msg string, errs ...error) {
	r.record(LevelWarn, msg, errs)
}

func (r *Recorder) LogError(_ context.Context, msg string, errs ...error) {
	r.record(LevelError, msg, errs)
}

func (r *Recorder) LogPanic(_ context.Context, msg string, errs ...error) {
	r.record(LevelPanic, msg, errs)
	panic(msg)
}

func (r *Recorder) LogFatal(_ context.Context, msg string, errs ...error) {
	r.record(LevelFatal, msg, errs)
}

func (r *Recorder) GetLogger() interface{} { return nil }
