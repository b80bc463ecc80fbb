package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ErrEmptyMessage is returned by Send when the text is blank after trimming
// and no file reference is attached.
var ErrEmptyMessage = errors.New("chat: empty message")

// ErrSessionClosed is returned by Send after Close.
var ErrSessionClosed = errors.New("chat: session closed")

type SessionState int

const (
	StateOpening SessionState = iota
	StateLive
	StateClosed
)

// Event is one timeline change, consumed by the UI bridge. Exactly one of
// the two fields is set: History carries the full timeline after the base
// history merged in, Message carries a single live delivery.
type Event struct {
	History []Message
	Message *Message
}

const eventBuffer = 64

// Session is one client's view of a two-party conversation. It merges the
// durable history fetch with live deliveries into a single ordered,
// duplicate-free timeline.
//
// The history fetch and the live subscription race; correctness does not
// depend on which completes first. Every timeline mutation is serialized
// through s.mu (single-writer discipline), so the two async paths can never
// interleave mid-update.
type Session struct {
	ConversationID string
	LocalUserID    string
	RemoteUserID   string

	deliverer Deliverer
	logger    *slog.Logger

	mu       sync.Mutex
	state    SessionState
	timeline []Message
	sub      Subscription
	events   chan Event
}

// newSession is called by Service.Open after participant validation.
func newSession(conversationID, localID, remoteID string, deliverer Deliverer, logger *slog.Logger) *Session {
	return &Session{
		ConversationID: conversationID,
		LocalUserID:    localID,
		RemoteUserID:   remoteID,
		deliverer:      deliverer,
		logger:         logger.With("conversation", conversationID),
		state:          StateOpening,
		events:         make(chan Event, eventBuffer),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Timeline returns a copy of the ordered, deduplicated message sequence.
func (s *Session) Timeline() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.timeline))
	copy(out, s.timeline)
	return out
}

// Events exposes timeline changes for a UI bridge. Slow consumers lose
// events rather than blocking the engine; Timeline is always authoritative.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Send validates and hands the message to the deliverer, fire-and-forget:
// it returns before persistence, and the sent message appears in the
// timeline only once the live channel echoes it back. A delivery failure is
// logged, never surfaced to the caller.
func (s *Session) Send(ctx context.Context, text string, fileURL, fileName *string) error {
	text = strings.TrimSpace(text)
	if text == "" && fileURL == nil {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.mu.Unlock()

	m := Message{
		ConversationID: s.ConversationID,
		SenderID:       s.LocalUserID,
		RecipientID:    s.RemoteUserID,
		Text:           text,
		FileURL:        fileURL,
		FileName:       fileName,
	}

	go func() {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.deliverer.Deliver(dctx, m); err != nil {
			s.logger.Warn("delivery unconfirmed", "error", err)
		}
	}()
	return nil
}

// Close unsubscribes from the live channel and freezes the timeline.
// Idempotent; deliveries in flight at the moment of close are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	sub := s.sub
	close(s.events)
	s.mu.Unlock()

	if sub != nil {
		if err := sub.Close(); err != nil {
			s.logger.Warn("unsubscribe failed", "error", err)
		}
	}
}

// attach records the live subscription and moves the session to Live. If
// Close already ran, the subscription is torn down again immediately.
func (s *Session) attach(sub Subscription) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		_ = sub.Close()
		return
	}
	s.sub = sub
	s.state = StateLive
	s.mu.Unlock()
}

// onHistoryLoaded installs the durable history as the base timeline. Live
// messages that arrived before the history did are re-merged in arrival
// order, not discarded.
func (s *Session) onHistoryLoaded(history []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}

	pending := s.timeline
	s.timeline = make([]Message, 0, len(history)+len(pending))
	s.timeline = append(s.timeline, history...)
	for _, m := range pending {
		s.insertLocked(m)
	}

	snapshot := make([]Message, len(s.timeline))
	copy(snapshot, s.timeline)
	s.emitLocked(Event{History: snapshot})
}

// onLiveMessage appends a broadcast delivery, suppressing echoes of
// messages already present.
func (s *Session) onLiveMessage(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	if !s.insertLocked(m) {
		return
	}
	s.emitLocked(Event{Message: &m})
}

// insertLocked places m at its timestamp position and reports whether the
// timeline grew. Equal timestamps keep arrival order: the scan from the
// tail stops at the first message not after m, so m lands behind its peers.
func (s *Session) insertLocked(m Message) bool {
	for _, existing := range s.timeline {
		if existing.Equivalent(m) {
			return false
		}
	}

	i := len(s.timeline)
	for i > 0 && s.timeline[i-1].Timestamp.After(m.Timestamp) {
		i--
	}
	s.timeline = append(s.timeline, Message{})
	copy(s.timeline[i+1:], s.timeline[i:])
	s.timeline[i] = m
	return true
}

func (s *Session) emitLocked(e Event) {
	select {
	case s.events <- e:
	default:
		s.logger.Warn("event buffer full, dropping timeline event")
	}
}
