package chat

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

const defaultHistoryTimeout = 10 * time.Second

// Service owns the collaborators shared by all sessions of this process:
// the history store, the live channel and the outbound deliverer. Sessions
// hold references to them; nothing here is a global.
type Service struct {
	repo           *Repo
	channel        Channel
	deliverer      Deliverer
	profiles       ProfileDirectory
	historyTimeout time.Duration
	logger         *slog.Logger
}

func NewService(repo *Repo, channel Channel, deliverer Deliverer, profiles ProfileDirectory, historyTimeout time.Duration, logger *slog.Logger) *Service {
	if historyTimeout <= 0 {
		historyTimeout = defaultHistoryTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:           repo,
		channel:        channel,
		deliverer:      deliverer,
		profiles:       profiles,
		historyTimeout: historyTimeout,
		logger:         logger,
	}
}

// Open starts a session between the local user and a remote user. The
// history fetch and the live subscription are issued concurrently and
// neither blocks the other; the returned session is usable (with an empty
// timeline) immediately. A failed or timed-out history fetch degrades to an
// empty base timeline so live traffic still flows.
func (s *Service) Open(ctx context.Context, localUserID, remoteUserID string) (*Session, error) {
	key, err := Key(localUserID, remoteUserID)
	if err != nil {
		return nil, err
	}

	sess := newSession(key, localUserID, remoteUserID, s.deliverer, s.logger)

	sub, err := s.channel.Subscribe(ctx, key, sess.onLiveMessage)
	if err != nil {
		return nil, err
	}
	sess.attach(sub)

	go s.loadHistory(ctx, sess)

	return sess, nil
}

func (s *Service) loadHistory(ctx context.Context, sess *Session) {
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.historyTimeout)
	defer cancel()

	// Record the thread so the dashboard lists it even before first message.
	if _, err := s.repo.EnsureConversation(hctx, sess.LocalUserID, sess.RemoteUserID); err != nil {
		s.logger.Warn("conversation record not ensured", "conversation", sess.ConversationID, "error", err)
	}

	history, err := s.repo.History(hctx, sess.ConversationID)
	if err != nil {
		s.logger.Warn("history unavailable, starting from empty timeline",
			"conversation", sess.ConversationID, "error", err)
		sess.onHistoryLoaded(nil)
		return
	}
	sess.onHistoryLoaded(history)
}

// ListConversations produces the dashboard chat list for one user: every
// conversation they participate in, annotated with the last message and the
// other participant's display name, most recently active first.
//
// Name lookups fan out concurrently so the list latency is bounded by the
// slowest single lookup; a failed lookup degrades that row to the raw id
// without failing the rest.
func (s *Service) ListConversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	convs, last, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, len(convs))
	var wg sync.WaitGroup
	for i, conv := range convs {
		other := conv.UserA
		if other == userID {
			other = conv.UserB
		}
		summaries[i] = ConversationSummary{
			ConversationID: conv.ConversationID,
			OtherUserID:    other,
			OtherUserName:  other,
			LastMessage:    last[conv.ConversationID],
			createdOrder:   conv.ID,
		}

		wg.Add(1)
		go func(i int, other string) {
			defer wg.Done()
			name, err := s.profiles.DisplayName(ctx, other)
			if err != nil || name == "" {
				s.logger.Debug("profile lookup failed, falling back to uid", "uid", other, "error", err)
				return
			}
			summaries[i].OtherUserName = name
		}(i, other)
	}
	wg.Wait()

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage, summaries[j].LastMessage
		switch {
		case a != nil && b != nil:
			return a.Timestamp.After(b.Timestamp)
		case a != nil:
			return true
		case b != nil:
			return false
		default:
			// Threads without messages keep creation order so an
			// unrelated re-fetch never reorders them.
			return summaries[i].createdOrder < summaries[j].createdOrder
		}
	})
	return summaries, nil
}

// History returns the persisted timeline between the user and another
// participant, oldest first. Used by the REST history endpoint; live
// sessions go through Open instead.
func (s *Service) History(ctx context.Context, localUserID, remoteUserID string) ([]Message, error) {
	key, err := Key(localUserID, remoteUserID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.repo.History(ctx, key)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}
