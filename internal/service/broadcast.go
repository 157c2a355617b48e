package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"vipbot/internal/domain"
	"vipbot/internal/repository"

	"go.uber.org/zap"
)

const audiencePageSize = 500

// Deliverer sends one payload to one chat
type Deliverer interface {
	Deliver(ctx context.Context, chatID int64, payload domain.Payload) error
}

// BroadcastService fans a payload out to an audience in paced batches
type BroadcastService struct {
	users      repository.UserRepository
	broadcasts repository.BroadcastRepository
	deliverer  Deliverer
	batchSize  int
	pause      time.Duration
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *zap.Logger
}

// NewBroadcastService creates a new broadcast service
func NewBroadcastService(
	users repository.UserRepository,
	broadcasts repository.BroadcastRepository,
	deliverer Deliverer,
	batchSize int,
	pause time.Duration,
	logger *zap.Logger,
) *BroadcastService {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &BroadcastService{
		users:      users,
		broadcasts: broadcasts,
		deliverer:  deliverer,
		batchSize:  batchSize,
		pause:      pause,
		now:        time.Now,
		sleep:      sleepContext,
		logger:     logger,
	}
}

// WithSleep overrides the pause between batches
func (s *BroadcastService) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *BroadcastService {
	s.sleep = sleep
	return s
}

// Send delivers the payload to every recipient of target and persists the summary.
// Per-recipient failures are counted, never returned.
func (s *BroadcastService) Send(ctx context.Context, target domain.Audience, payload domain.Payload) (*domain.Broadcast, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("broadcast: unknown audience %q", target)
	}

	recipients, err := s.audience(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("resolve audience: %w", err)
	}

	s.logger.Info("Broadcast started",
		zap.String("target", string(target)),
		zap.Int("recipients", len(recipients)),
	)

	var sent, failed int64
	for start := 0; start < len(recipients); start += s.batchSize {
		if start > 0 {
			if err := s.sleep(ctx, s.pause); err != nil {
				// remaining recipients are never attempted
				failed += int64(len(recipients) - start)
				s.logger.Warn("Broadcast interrupted", zap.Error(err))
				break
			}
		}

		end := start + s.batchSize
		if end > len(recipients) {
			end = len(recipients)
		}

		var wg sync.WaitGroup
		for _, chatID := range recipients[start:end] {
			wg.Add(1)
			go func(chatID int64) {
				defer wg.Done()
				if err := s.deliverer.Deliver(ctx, chatID, payload); err != nil {
					atomic.AddInt64(&failed, 1)
					s.logger.Debug("Broadcast delivery failed",
						zap.Int64("chat_id", chatID),
						zap.Error(err),
					)
					return
				}
				atomic.AddInt64(&sent, 1)
			}(chatID)
		}
		wg.Wait()
	}

	b := domain.Broadcast{
		Target:      target,
		Kind:        payload.Kind,
		Text:        payload.Text,
		FileID:      payload.FileID,
		SentCount:   int(sent),
		FailedCount: int(failed),
		CreatedAt:   s.now(),
	}
	id, err := s.broadcasts.InsertBroadcast(context.WithoutCancel(ctx), b)
	if err != nil {
		return nil, fmt.Errorf("save broadcast: %w", err)
	}
	b.ID = id

	s.logger.Info("Broadcast finished",
		zap.Int64("broadcast_id", id),
		zap.Int("sent", b.SentCount),
		zap.Int("failed", b.FailedCount),
	)
	return &b, nil
}

// Get returns a past broadcast
func (s *BroadcastService) Get(ctx context.Context, id int64) (*domain.Broadcast, error) {
	return s.broadcasts.GetBroadcast(ctx, id)
}

func (s *BroadcastService) audience(ctx context.Context, target domain.Audience) ([]int64, error) {
	now := s.now()
	var all []int64
	for offset := 0; ; offset += audiencePageSize {
		page, err := s.users.ListAudience(ctx, target, now, audiencePageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < audiencePageSize {
			return all, nil
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
