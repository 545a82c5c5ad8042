package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// IMAPIntake polls a mailbox for unseen mail, imports it and marks it seen.
// Polls follow the cron schedule when one is configured and the fixed
// poll interval otherwise.
type IMAPIntake struct {
	importer Importer
	logger   *zap.Logger
	cfg      config.IMAPIntakeConfig
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewIMAPIntake creates a new IMAP intake
func NewIMAPIntake(importer Importer, logger *zap.Logger, cfg config.IMAPIntakeConfig) *IMAPIntake {
	return &IMAPIntake{
		importer: importer,
		logger:   logger,
		cfg:      cfg,
	}
}

// Name identifies the intake in logs
func (i *IMAPIntake) Name() string {
	return "imap"
}

// Start starts polling in the background
func (i *IMAPIntake) Start() error {
	if i.cfg.Address == "" {
		return &core.ConfigurationError{Setting: "intake.imap.address", Reason: "is required"}
	}
	if i.cfg.Schedule != "" && !gronx.IsValid(i.cfg.Schedule) {
		return &core.ConfigurationError{Setting: "intake.imap.schedule", Reason: "is not a valid cron expression"}
	}

	ctx, cancel := context.WithCancel(context.Background())
	i.cancel = cancel

	i.logger.Info("IMAP intake starting",
		zap.String("address", i.cfg.Address),
		zap.String("mailbox", i.cfg.Mailbox),
		zap.Duration("poll_interval", i.cfg.PollInterval),
		zap.String("schedule", i.cfg.Schedule))

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.run(ctx)
	}()
	return nil
}

// Stop stops polling and waits for an in-flight poll to finish
func (i *IMAPIntake) Stop() error {
	if i.cancel != nil {
		i.cancel()
	}
	i.wg.Wait()
	return nil
}

func (i *IMAPIntake) run(ctx context.Context) {
	for {
		if err := i.poll(ctx); err != nil {
			i.logger.Error("IMAP poll failed", zap.Error(err))
		}

		timer := time.NewTimer(i.nextWait(time.Now().UTC()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// nextWait returns how long to sleep before the poll after now
func (i *IMAPIntake) nextWait(now time.Time) time.Duration {
	interval := i.cfg.PollInterval
	if interval <= 0 {
		interval = time.Minute
	}
	if i.cfg.Schedule == "" {
		return interval
	}

	next, err := gronx.NextTickAfter(i.cfg.Schedule, now, false)
	if err != nil {
		i.logger.Warn("Failed to compute next IMAP poll, using poll interval",
			zap.String("schedule", i.cfg.Schedule), zap.Error(err))
		return interval
	}
	if wait := next.Sub(now); wait > 0 {
		return wait
	}
	return time.Second
}

// poll fetches every unseen message once
func (i *IMAPIntake) poll(ctx context.Context) error {
	c, err := client.DialTLS(i.cfg.Address, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer c.Logout()

	if err := c.Login(i.cfg.Username, i.cfg.Password); err != nil {
		return fmt.Errorf("failed to login: %w", err)
	}

	if _, err := c.Select(i.cfg.Mailbox, false); err != nil {
		return fmt.Errorf("failed to select mailbox %s: %w", i.cfg.Mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return fmt.Errorf("failed to search mailbox: %w", err)
	}
	if len(uids) == 0 {
		return nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	fetched := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, items, fetched)
	}()

	var batch []fetchedMessage
	for m := range fetched {
		body := m.GetBody(section)
		if body == nil {
			continue
		}
		msg, err := ParseMessage(body, "")
		if err != nil {
			i.logger.Warn("Skipping unparseable message", zap.Uint32("uid", m.Uid), zap.Error(err))
			continue
		}
		batch = append(batch, fetchedMessage{uid: m.Uid, msg: *msg})
	}
	if err := <-done; err != nil {
		return fmt.Errorf("failed to fetch messages: %w", err)
	}

	handled, importErr := i.importEach(ctx, batch)
	if len(handled) > 0 {
		seen := new(imap.SeqSet)
		seen.AddNum(handled...)
		item := imap.FormatFlagsOp(imap.AddFlags, true)
		if err := c.UidStore(seen, item, []interface{}{imap.SeenFlag}, nil); err != nil {
			return errors.Join(importErr, fmt.Errorf("failed to mark messages seen: %w", err))
		}
	}
	if importErr != nil {
		return fmt.Errorf("failed to import messages: %w", importErr)
	}

	i.logger.Info("IMAP poll complete", zap.Int("messages", len(batch)))
	return nil
}

type fetchedMessage struct {
	uid uint32
	msg core.Message
}

// importEach imports the batch one message at a time and returns the UIDs
// that were handled, whether stored or dropped by the filter. Messages that
// fail stay unseen and are retried on the next poll.
func (i *IMAPIntake) importEach(ctx context.Context, batch []fetchedMessage) ([]uint32, error) {
	handled := make([]uint32, 0, len(batch))
	var errs []error
	for _, f := range batch {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := i.importer.Import(ctx, []core.Message{f.msg}); err != nil {
			i.logger.Warn("Failed to import message, leaving it unseen",
				zap.Uint32("uid", f.uid), zap.String("sender", f.msg.Sender), zap.Error(err))
			errs = append(errs, fmt.Errorf("uid %d: %w", f.uid, err))
			continue
		}
		handled = append(handled, f.uid)
	}
	return handled, errors.Join(errs...)
}
