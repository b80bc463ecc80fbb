package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type recordingDeliverer struct {
	mu        sync.Mutex
	delivered []Message
}

func (d *recordingDeliverer) Deliver(_ context.Context, m Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivered = append(d.delivered, m)
	return nil
}

func (d *recordingDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.delivered)
}

func at(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func msg(sender, recipient, text string, ts time.Time) Message {
	return Message{
		ConversationID: "a__b",
		SenderID:       sender,
		RecipientID:    recipient,
		Text:           text,
		Timestamp:      ts,
	}
}

func newTestSession(d Deliverer) *Session {
	if d == nil {
		d = &recordingDeliverer{}
	}
	return newSession("a__b", "a", "b", d, slog.Default())
}

func timelineTexts(s *Session) []string {
	var out []string
	for _, m := range s.Timeline() {
		out = append(out, m.Text)
	}
	return out
}

func TestSession_LiveBeforeHistoryIsMergedInOrder(t *testing.T) {
	s := newTestSession(nil)

	// Live delivery lands before the history fetch completes.
	s.onLiveMessage(msg("a", "b", "t2", at(2)))

	s.onHistoryLoaded([]Message{
		msg("a", "b", "t1", at(1)),
		msg("b", "a", "t3", at(3)),
	})

	got := timelineTexts(s)
	want := []string{"t1", "t2", "t3"}
	if len(got) != len(want) {
		t.Fatalf("timeline length = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("timeline = %v, want %v", got, want)
		}
	}
}

func TestSession_HistoryBeforeLive(t *testing.T) {
	s := newTestSession(nil)

	s.onHistoryLoaded([]Message{
		msg("a", "b", "t1", at(1)),
		msg("b", "a", "t3", at(3)),
	})
	s.onLiveMessage(msg("a", "b", "t2", at(2)))

	got := timelineTexts(s)
	want := []string{"t1", "t2", "t3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("timeline = %v, want %v", got, want)
		}
	}
}

func TestSession_DuplicateLiveDeliveryIsSuppressed(t *testing.T) {
	s := newTestSession(nil)

	m := msg("a", "b", "hello", at(5))
	s.onLiveMessage(m)
	s.onLiveMessage(m)

	if n := len(s.Timeline()); n != 1 {
		t.Fatalf("timeline length = %d after duplicate delivery, want 1", n)
	}
}

func TestSession_HistoryEchoOfLiveMessageIsSuppressed(t *testing.T) {
	s := newTestSession(nil)

	m := msg("a", "b", "hello", at(5))
	s.onLiveMessage(m)
	s.onHistoryLoaded([]Message{m})

	if n := len(s.Timeline()); n != 1 {
		t.Fatalf("timeline length = %d after history echo, want 1", n)
	}
}

func TestSession_EqualTimestampsKeepArrivalOrder(t *testing.T) {
	s := newTestSession(nil)

	s.onLiveMessage(msg("a", "b", "first", at(7)))
	s.onLiveMessage(msg("b", "a", "second", at(7)))

	got := timelineTexts(s)
	if got[0] != "first" || got[1] != "second" {
		t.Fatalf("equal-timestamp order = %v, want [first second]", got)
	}
}

func TestSession_SendEmptyMessageFailsWithoutPublish(t *testing.T) {
	d := &recordingDeliverer{}
	s := newTestSession(d)

	for _, text := range []string{"", "   ", "\n\t"} {
		if err := s.Send(context.Background(), text, nil, nil); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("Send(%q): expected ErrEmptyMessage, got %v", text, err)
		}
	}
	if n := d.count(); n != 0 {
		t.Fatalf("deliverer called %d times for empty sends, want 0", n)
	}
}

func TestSession_SendFileOnlyMessageIsAllowed(t *testing.T) {
	d := &recordingDeliverer{}
	s := newTestSession(d)

	url := "https://files.example/doc.pdf"
	name := "doc.pdf"
	if err := s.Send(context.Background(), "", &url, &name); err != nil {
		t.Fatalf("file-only send: %v", err)
	}

	waitFor(t, func() bool { return d.count() == 1 })

	// No optimistic append: the timeline stays empty until the echo.
	if n := len(s.Timeline()); n != 0 {
		t.Fatalf("timeline length = %d before echo, want 0", n)
	}
}

func TestSession_SendIsFireAndForget(t *testing.T) {
	d := &recordingDeliverer{}
	s := newTestSession(d)

	if err := s.Send(context.Background(), "hello", nil, nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	waitFor(t, func() bool { return d.count() == 1 })

	d.mu.Lock()
	sent := d.delivered[0]
	d.mu.Unlock()
	if sent.SenderID != "a" || sent.RecipientID != "b" || sent.Text != "hello" {
		t.Fatalf("unexpected delivered message: %+v", sent)
	}
}

type failingDeliverer struct{ calls chan struct{} }

func (d *failingDeliverer) Deliver(context.Context, Message) error {
	d.calls <- struct{}{}
	return errors.New("broker unavailable")
}

func TestSession_DeliveryFailureIsNotSurfacedToSender(t *testing.T) {
	d := &failingDeliverer{calls: make(chan struct{}, 1)}
	s := newTestSession(d)

	// Best-effort semantics: Send succeeds even though delivery will fail.
	if err := s.Send(context.Background(), "hello", nil, nil); err != nil {
		t.Fatalf("send returned %v, want nil despite delivery failure", err)
	}

	select {
	case <-d.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("deliverer never invoked")
	}
}

func TestSession_CloseFreezesTimeline(t *testing.T) {
	s := newTestSession(nil)
	s.onLiveMessage(msg("a", "b", "kept", at(1)))

	s.Close()
	s.onLiveMessage(msg("b", "a", "dropped", at(2)))
	s.onHistoryLoaded([]Message{msg("a", "b", "late history", at(0))})

	got := timelineTexts(s)
	if len(got) != 1 || got[0] != "kept" {
		t.Fatalf("timeline after close = %v, want [kept]", got)
	}
	if st := s.State(); st != StateClosed {
		t.Fatalf("state = %v, want StateClosed", st)
	}
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	s := newTestSession(nil)
	sub := &recordingSub{}
	s.attach(sub)

	s.Close()
	s.Close()
	s.Close()

	if got := sub.closes.Load(); got < 1 {
		t.Fatalf("subscription never closed")
	}
	if err := s.Send(context.Background(), "hello", nil, nil); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Send after close: expected ErrSessionClosed, got %v", err)
	}
}

func TestSession_EventsCarryHistoryThenLive(t *testing.T) {
	s := newTestSession(nil)

	s.onHistoryLoaded([]Message{msg("a", "b", "old", at(1))})
	s.onLiveMessage(msg("b", "a", "new", at(2)))

	ev := <-s.Events()
	if ev.History == nil || len(ev.History) != 1 || ev.History[0].Text != "old" {
		t.Fatalf("expected history event with [old], got %+v", ev)
	}
	ev = <-s.Events()
	if ev.Message == nil || ev.Message.Text != "new" {
		t.Fatalf("expected message event with new, got %+v", ev)
	}
}
