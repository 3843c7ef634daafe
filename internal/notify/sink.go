// Package notify delivers operator-visible notifications independently of the
// page that renders them.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/odyssey-erp/stockdesk/internal/shared"
)

// Kind classifies a notification for presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Message is one queued notification.
type Message struct {
	Kind Kind
	Text string
}

// Sink receives notifications emitted by controllers.
type Sink interface {
	Notify(kind Kind, text string)
}

// Success is shorthand for Notify(KindSuccess, text).
func Success(s Sink, text string) { notify(s, KindSuccess, text) }

// Info is shorthand for Notify(KindInfo, text).
func Info(s Sink, text string) { notify(s, KindInfo, text) }

// Warning is shorthand for Notify(KindWarning, text).
func Warning(s Sink, text string) { notify(s, KindWarning, text) }

// Error is shorthand for Notify(KindError, text).
func Error(s Sink, text string) { notify(s, KindError, text) }

func notify(s Sink, kind Kind, text string) {
	if s == nil || text == "" {
		return
	}
	s.Notify(kind, text)
}

// FlashSink queues notifications as session flash messages so they survive
// the redirect that follows a form post.
type FlashSink struct {
	Session *shared.Session
}

// Notify implements Sink.
func (f FlashSink) Notify(kind Kind, text string) {
	if f.Session == nil {
		return
	}
	f.Session.AddFlash(shared.FlashMessage{Kind: string(kind), Message: text})
}

// Recorder keeps notifications in memory. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Notify implements Sink.
func (r *Recorder) Notify(kind Kind, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Kind: kind, Text: text})
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Drain returns and clears the recorded messages.
func (r *Recorder) Drain() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.messages
	r.messages = nil
	return out
}

// Texts returns the text of every recorded message of the given kind.
func (r *Recorder) Texts(kind Kind) []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Kind == kind {
			out = append(out, m.Text)
		}
	}
	return out
}

// Fanout forwards every notification to each wrapped sink.
type Fanout []Sink

// Notify implements Sink.
func (f Fanout) Notify(kind Kind, text string) {
	for _, s := range f {
		if s != nil {
			s.Notify(kind, text)
		}
	}
}

// LogSink mirrors notifications into the structured log.
type LogSink struct {
	Logger *slog.Logger
}

// Notify implements Sink.
func (l LogSink) Notify(kind Kind, text string) {
	if l.Logger == nil {
		return
	}
	level := slog.LevelDebug
	if kind == KindError {
		level = slog.LevelWarn
	}
	l.Logger.Log(context.Background(), level, "notification", slog.String("kind", string(kind)), slog.String("text", text))
}
