// Package sweeper runs the two background cleanup loops: a short-interval
// presence sweep and a long-interval room eviction sweep. Both are idempotent
// and independent of the request path; a loop killed mid-sweep just leaves
// stale rows for the next tick.
package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sprintdeck/sprintdeck/internal/store"
)

type Config struct {
	PresenceInterval time.Duration
	PresenceMaxAge   time.Duration
	RoomInterval     time.Duration
	RoomInactiveDays int
}

type Sweeper struct {
	store  *store.Store
	log    *zap.Logger
	cfg    Config
	now    func() time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

func New(st *store.Store, log *zap.Logger, cfg Config) *Sweeper {
	return &Sweeper{
		store: st,
		log:   log,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Start launches both loops. Call Stop to shut them down deterministically.
func (s *Sweeper) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.done = make(chan struct{}, 2)

	go s.loop(ctx, s.cfg.PresenceInterval, s.sweepPresence)
	go s.loop(ctx, s.cfg.RoomInterval, s.sweepRooms)
}

func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	<-s.done
}

func (s *Sweeper) loop(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	defer func() { s.done <- struct{}{} }()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			tick(ctx)
		}
	}
}

func (s *Sweeper) sweepPresence(ctx context.Context) {
	count, err := s.store.DeleteStalePresence(ctx, s.now().UTC().Add(-s.cfg.PresenceMaxAge))
	if err != nil {
		s.log.Error("presence sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.log.Info("presence sweep", zap.Int64("deleted", count))
	}
}

func (s *Sweeper) sweepRooms(ctx context.Context) {
	if _, err := s.SweepInactiveRooms(ctx, s.cfg.RoomInactiveDays); err != nil {
		s.log.Error("room sweep failed", zap.Error(err))
	}
	if _, err := s.store.DeleteOrphans(ctx); err != nil {
		s.log.Error("orphan sweep failed", zap.Error(err))
	}
}

// SweepInactiveRooms deletes every room whose last activity is older than
// inactiveDays, cascading to all child records. Each room is an independent
// unit of work: one failure is logged and the sweep moves on.
func (s *Sweeper) SweepInactiveRooms(ctx context.Context, inactiveDays int) (int, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -inactiveDays)
	rooms, err := s.store.ListRoomsInactiveSince(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, room := range rooms {
		if err := s.store.DeleteRoomCascade(ctx, room.ID); err != nil {
			s.log.Error("room eviction failed",
				zap.String("room_id", room.ID), zap.Error(err))
			continue
		}
		deleted++
		s.log.Info("room evicted",
			zap.String("room_id", room.ID),
			zap.Time("last_activity_at", room.LastActivityAt))
	}
	return deleted, nil
}
