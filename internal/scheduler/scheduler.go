package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/palmoil/internal/config"
	"github.com/mamadbah2/palmoil/internal/domain/models"
)

// ErrNoSession is returned when the digest runs without an authenticated session.
var ErrNoSession = errors.New("no authenticated session")

// DigestBuilder produces the operator digest.
type DigestBuilder interface {
	Digest(ctx context.Context) (*models.Digest, error)
}

// Sessions reports, and if possible restores, the backend session.
type Sessions interface {
	IsAuthenticated() bool
	Login(ctx context.Context, username, password string) (*models.User, error)
}

// Archive stores digests. Optional.
type Archive interface {
	SaveDigest(ctx context.Context, digest models.Digest) error
}

// Notifier delivers digests to the operator. Optional.
type Notifier interface {
	Notify(ctx context.Context, msg models.Notification) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.Config
	digests  DigestBuilder
	sessions Sessions
	archive  Archive
	notifier Notifier
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. archive and notifier may be nil.
func NewScheduler(cfg config.Config, digests DigestBuilder, sessions Sessions, archive Archive, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Digest.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Digest.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		cfg:      cfg,
		digests:  digests,
		sessions: sessions,
		archive:  archive,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Start registers the digest job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Digest.CronSchedule), zap.String("timezone", s.cfg.Digest.Timezone))

	if _, err := s.cron.AddFunc(s.cfg.Digest.CronSchedule, s.runScheduled); err != nil {
		return fmt.Errorf("schedule digest %q: %w", s.cfg.Digest.CronSchedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunDigest(ctx); err != nil {
		if errors.Is(err, ErrNoSession) {
			s.logger.Warn("skipping digest", zap.Error(err))
			return
		}
		s.logger.Error("digest failed", zap.Error(err))
	}
}

func (s *Scheduler) ensureSession(ctx context.Context) error {
	if s.sessions.IsAuthenticated() {
		return nil
	}
	if !s.cfg.Backend.HasServiceAccount() {
		return ErrNoSession
	}
	if _, err := s.sessions.Login(ctx, s.cfg.Backend.Username, s.cfg.Backend.Password); err != nil {
		return fmt.Errorf("%w: service login failed: %v", ErrNoSession, err)
	}
	return nil
}

// RunDigest builds the digest, archives it and notifies the operator.
// Archive and notification failures are logged and do not fail the run.
func (s *Scheduler) RunDigest(ctx context.Context) error {
	if err := s.ensureSession(ctx); err != nil {
		return err
	}

	s.logger.Info("generating digest")
	digest, err := s.digests.Digest(ctx)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}

	if s.archive != nil {
		if err := s.archive.SaveDigest(ctx, *digest); err != nil {
			s.logger.Error("failed to archive digest", zap.Error(err))
		}
	}

	if s.notifier != nil && s.cfg.WhatsApp.Recipient != "" {
		msg := models.Notification{To: s.cfg.WhatsApp.Recipient, Message: digest.Text}
		if err := s.notifier.Notify(ctx, msg); err != nil {
			s.logger.Error("failed to send digest", zap.Error(err))
		} else {
			s.logger.Info("digest sent", zap.Int("alerts", len(digest.Alerts)), zap.Int("critical", digest.Critical))
		}
	}

	return nil
}
