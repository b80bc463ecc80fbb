package chat

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 2s")
}

type recordingSub struct {
	closes atomic.Int32
}

func (s *recordingSub) Close() error {
	s.closes.Add(1)
	return nil
}

// fakeChannel is an in-test Channel with synchronous dispatch.
type fakeChannel struct {
	mu       sync.Mutex
	nextID   int
	handlers map[string]map[int]LiveHandler
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{handlers: make(map[string]map[int]LiveHandler)}
}

func (f *fakeChannel) Subscribe(_ context.Context, topic string, h LiveHandler) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handlers[topic] == nil {
		f.handlers[topic] = make(map[int]LiveHandler)
	}
	f.nextID++
	id := f.nextID
	f.handlers[topic][id] = h
	return &fakeSub{channel: f, topic: topic, id: id}, nil
}

func (f *fakeChannel) Publish(_ context.Context, topic string, m Message) error {
	f.mu.Lock()
	hs := make([]LiveHandler, 0, len(f.handlers[topic]))
	for _, h := range f.handlers[topic] {
		hs = append(hs, h)
	}
	f.mu.Unlock()
	for _, h := range hs {
		h(m)
	}
	return nil
}

type fakeSub struct {
	channel *fakeChannel
	topic   string
	id      int
}

func (s *fakeSub) Close() error {
	s.channel.mu.Lock()
	defer s.channel.mu.Unlock()
	delete(s.channel.handlers[s.topic], s.id)
	return nil
}
