package events

import (
	"fmt"
	"sync"
)

type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Event is either a log line (Message set) or a progress update (Progress true).
type Event struct {
	Level    Level
	Message  string
	Progress bool
	Status   string
	Percent  int
}

// Sink consumes pipeline events. Implementations must be safe for concurrent use.
type Sink interface {
	Emit(Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

type multi []Sink

func (m multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// Multi fans events out to every non-nil sink.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Chan forwards events into ch. A nil channel discards.
func Chan(ch chan<- Event) Sink {
	if ch == nil {
		return Discard
	}
	return SinkFunc(func(e Event) { ch <- e })
}

func Infof(s Sink, format string, args ...any) {
	emit(s, LevelInfo, format, args...)
}

func Warnf(s Sink, format string, args ...any) {
	emit(s, LevelWarn, format, args...)
}

func Errorf(s Sink, format string, args ...any) {
	emit(s, LevelError, format, args...)
}

func Progress(s Sink, status string, percent int) {
	if s == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	s.Emit(Event{Progress: true, Status: status, Percent: percent})
}

func emit(s Sink, lvl Level, format string, args ...any) {
	if s == nil {
		return
	}
	s.Emit(Event{Level: lvl, Message: fmt.Sprintf(format, args...)})
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Messages returns the log messages at the given level, in emission order.
func (r *Recorder) Messages(lvl Level) []string {
	var out []string
	for _, e := range r.Events() {
		if !e.Progress && e.Level == lvl {
			out = append(out, e.Message)
		}
	}
	return out
}
