package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// InboxHooks are optional callbacks fired by the inbox
type InboxHooks struct {
	// OnImport fires once per imported batch. Skipped counts support
	// messages rejected as invalid.
	OnImport func(received, stored, skipped int)
	// OnSend fires after every reply delivery attempt
	OnSend func(err error)
}

// InboxService is the core service that triages and keeps support messages
type InboxService struct {
	triager     Triager
	repo        RecordRepository
	filter      MessageFilter
	mailer      Mailer
	logger      *zap.Logger
	concurrency int
	timeout     time.Duration
	hooks       InboxHooks
	now         func() time.Time
	locks       recordLocks
}

// recordLocks serialises read-modify-write sequences on one record id
type recordLocks struct {
	mu    sync.Mutex
	locks map[string]*recordLock
}

type recordLock struct {
	sync.Mutex
	refs int
}

// lock blocks until id is free and returns the matching unlock
func (l *recordLocks) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*recordLock)
	}
	rl, ok := l.locks[id]
	if !ok {
		rl = &recordLock{}
		l.locks[id] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.Lock()
	return func() {
		rl.Unlock()
		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// NewInboxService creates a new inbox service. A nil filter accepts every
// message; a non-positive timeout leaves triage calls unbounded.
func NewInboxService(
	triager Triager,
	repo RecordRepository,
	filter MessageFilter,
	mailer Mailer,
	logger *zap.Logger,
	concurrency int,
	timeout time.Duration,
	hooks InboxHooks,
) *InboxService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &InboxService{
		triager:     triager,
		repo:        repo,
		filter:      filter,
		mailer:      mailer,
		logger:      logger,
		concurrency: concurrency,
		timeout:     timeout,
		hooks:       hooks,
		now:         time.Now,
	}
}

// Import triages and stores the support messages among msgs. Messages the
// filter rejects are dropped, and messages that fail validation are logged
// and skipped. The stored records are returned in input order.
func (s *InboxService) Import(ctx context.Context, msgs []Message) ([]*Record, error) {
	accepted := make([]Message, 0, len(msgs))
	for i := range msgs {
		if s.filter == nil || s.filter.IsSupportMessage(&msgs[i]) {
			accepted = append(accepted, msgs[i])
		}
	}

	records := make([]*Record, len(accepted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range accepted {
		msg := accepted[i]
		g.Go(func() error {
			record, err := s.importOne(gctx, &msg)
			if err != nil {
				return err
			}
			records[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stored := make([]*Record, 0, len(records))
	for _, r := range records {
		if r != nil {
			stored = append(stored, r)
		}
	}

	if s.hooks.OnImport != nil {
		s.hooks.OnImport(len(msgs), len(stored), len(accepted)-len(stored))
	}
	s.logger.Info("Messages imported",
		zap.Int("received", len(msgs)),
		zap.Int("accepted", len(accepted)),
		zap.Int("stored", len(stored)))

	return stored, nil
}

// importOne triages and saves one message. A nil record with a nil error
// means the message was rejected as invalid.
func (s *InboxService) importOne(ctx context.Context, msg *Message) (*Record, error) {
	tctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.triager.Triage(tctx, msg)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			s.logger.Warn("Skipping invalid message",
				zap.String("sender", msg.Sender),
				zap.Error(err))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to triage message from %s: %w", msg.Sender, err)
	}

	now := s.now().UTC()
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = now
	}
	record := &Record{
		ID:        ulid.Make().String(),
		Message:   *msg,
		Result:    *result,
		Status:    StatusPending,
		Response:  result.SuggestedResponse,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save record: %w", err)
	}
	return record, nil
}

// List returns every record, urgent first and newest first within a priority
func (s *InboxService) List(ctx context.Context) ([]*Record, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	SortRecords(records)
	return records, nil
}

// Get returns one record
func (s *InboxService) Get(ctx context.Context, id string) (*Record, error) {
	return s.repo.Get(ctx, id)
}

// UpdateResponse replaces the reply an operator will send
func (s *InboxService) UpdateResponse(ctx context.Context, id, response string) (*Record, error) {
	if strings.TrimSpace(response) == "" {
		return nil, &ValidationError{Field: "response", Reason: "is required"}
	}

	unlock := s.locks.lock(id)
	defer unlock()

	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Response = response
	record.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save record: %w", err)
	}
	return record, nil
}

// Send mails the current reply to the sender and marks the record Responded.
// Concurrent sends of one record deliver a single mail.
func (s *InboxService) Send(ctx context.Context, id string) (*Record, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status == StatusResponded {
		return record, nil
	}

	reply := &Reply{
		To:      record.Message.Sender,
		Subject: replySubject(record.Message.Subject),
		Body:    record.Response,
	}
	err = s.mailer.Send(ctx, reply)
	if s.hooks.OnSend != nil {
		s.hooks.OnSend(err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to send reply to %s: %w", reply.To, err)
	}

	now := s.now().UTC()
	record.Status = StatusResponded
	record.RespondedAt = &now
	record.UpdatedAt = now
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save record: %w", err)
	}

	s.logger.Info("Reply sent", zap.String("id", record.ID), zap.String("to", reply.To))
	return record, nil
}

// Delete removes a record. Unknown ids return ErrRecordNotFound.
func (s *InboxService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	s.logger.Info("Record deleted", zap.String("id", id))
	return nil
}

// Stats summarises the inbox as of now
func (s *InboxService) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return ComputeStats(records, now), nil
}

// ComputeStats counts records by status, priority, sentiment and age
func ComputeStats(records []*Record, now time.Time) *Stats {
	stats := &Stats{Total: len(records)}
	dayAgo := now.Add(-24 * time.Hour)

	for _, r := range records {
		if r.Status == StatusResponded {
			stats.Resolved++
		} else {
			stats.Pending++
		}
		if r.Result.Priority == PriorityUrgent {
			stats.Urgent++
		}
		switch r.Result.Sentiment {
		case SentimentPositive:
			stats.Sentiment.Positive++
		case SentimentNegative:
			stats.Sentiment.Negative++
		default:
			stats.Sentiment.Neutral++
		}
		if r.Message.ReceivedAt.After(dayAgo) && !r.Message.ReceivedAt.After(now) {
			stats.Last24Hours++
		}
	}
	return stats
}

// SortRecords orders records urgent first, then by newest received
func SortRecords(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		ui := records[i].Result.Priority == PriorityUrgent
		uj := records[j].Result.Priority == PriorityUrgent
		if ui != uj {
			return ui
		}
		return records[i].Message.ReceivedAt.After(records[j].Message.ReceivedAt)
	})
}

func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	if subject == "" {
		return "Re: your support request"
	}
	return "Re: " + subject
}
