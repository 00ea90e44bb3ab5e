// Package reconciler polls the provider for every active room and turns the
// differences between consecutive snapshots into room events.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sharetube/jamroom/internal/metrics"
	"github.com/sharetube/jamroom/internal/provider"
	"github.com/sharetube/jamroom/internal/service/room"
	"golang.org/x/sync/errgroup"
)

type iRoomService interface {
	GetRoomIds(ctx context.Context) ([]string, error)
	GetRoom(ctx context.Context, roomId string) (room.Room, error)
	DeleteRoom(ctx context.Context, roomId string) error
	Authorize(ctx context.Context, roomId string) (string, error)
	Broadcast(ctx context.Context, roomId string, eventType string, data any) error
}

type iProvider interface {
	GetQueue(ctx context.Context, authorization string) (provider.Queue, error)
	GetPlayer(ctx context.Context, authorization string) (provider.Player, error)
}

type Config struct {
	Interval    time.Duration
	Concurrency int
}

// snapshot is the last state announced to a room.
type snapshot struct {
	songId     string
	isPlaying  bool
	deviceName string
}

type Reconciler struct {
	rooms       iRoomService
	provider    iProvider
	logger      *slog.Logger
	interval    time.Duration
	concurrency int
	now         func() time.Time

	running atomic.Bool
	ticks   sync.WaitGroup

	mu    sync.Mutex
	cache map[string]*snapshot
}

func New(rooms iRoomService, prov iProvider, logger *slog.Logger, cfg *Config) *Reconciler {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Reconciler{
		rooms:       rooms,
		provider:    prov,
		logger:      logger,
		interval:    cfg.Interval,
		concurrency: concurrency,
		now:         time.Now,
		cache:       make(map[string]*snapshot),
	}
}

// Run starts a cycle every interval until ctx is done. A tick that fires
// while the previous cycle is still running is skipped.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "reconciler started", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			r.ticks.Wait()
			r.logger.InfoContext(ctx, "reconciler stopped")
			return ctx.Err()
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}

			r.ticks.Add(1)
			go func() {
				defer r.ticks.Done()
				r.Tick(ctx)
			}()
		}
	}
}

// Tick runs one cycle unless another one is in progress. It reports whether
// the cycle ran.
func (r *Reconciler) Tick(ctx context.Context) bool {
	if !r.running.CompareAndSwap(false, true) {
		metrics.ReconcileSkippedTotal.Inc()
		r.logger.DebugContext(ctx, "previous cycle still running, skipping")
		return false
	}
	defer r.running.Store(false)

	if ctx.Err() != nil {
		return false
	}

	if err := r.Cycle(ctx); err != nil {
		r.logger.ErrorContext(ctx, "reconcile cycle failed", "error", err)
	}

	return true
}

// Cycle reconciles every stored room once. Failures of single rooms are
// logged and do not stop the others.
func (r *Reconciler) Cycle(ctx context.Context) error {
	start := r.now()
	defer func() {
		metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	}()

	roomIds, err := r.rooms.GetRoomIds(ctx)
	if err != nil {
		return fmt.Errorf("failed to list rooms: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for _, roomId := range roomIds {
		g.Go(func() error {
			if err := r.reconcileRoom(ctx, roomId); err != nil {
				r.logger.WarnContext(ctx, "failed to reconcile room", "room_id", roomId, "error", err)
			}
			return nil
		})
	}
	g.Wait()

	r.prune(roomIds)
	r.logger.DebugContext(ctx, "cycle done", "rooms", len(roomIds), "took", time.Since(start))
	return nil
}

func (r *Reconciler) reconcileRoom(ctx context.Context, roomId string) error {
	rm, err := r.rooms.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			r.Forget(roomId)
			return nil
		}
		return err
	}

	if !rm.HasConnectedMember() {
		// a room that was just created has not been joined by its owner yet
		if r.now().Sub(rm.CreatedAt) < r.interval {
			return nil
		}

		r.logger.InfoContext(ctx, "deleting dormant room", "room_id", roomId)
		if err := r.rooms.DeleteRoom(ctx, roomId); err != nil && !errors.Is(err, room.ErrRoomNotFound) {
			return err
		}
		r.Forget(roomId)
		return nil
	}

	authorization, err := r.rooms.Authorize(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return nil
		}
		metrics.ProviderErrorsTotal.Inc()
		return err
	}

	queue, err := r.provider.GetQueue(ctx, authorization)
	if err != nil {
		metrics.ProviderErrorsTotal.Inc()
		return fmt.Errorf("failed to get queue: %w", err)
	}

	player, err := r.provider.GetPlayer(ctx, authorization)
	if err != nil {
		metrics.ProviderErrorsTotal.Inc()
		return fmt.Errorf("failed to get player: %w", err)
	}

	return r.apply(ctx, roomId, queue, player)
}

// apply broadcasts one event per changed field, in the order track,
// play state, device. A field is recorded only once its event went out.
func (r *Reconciler) apply(ctx context.Context, roomId string, queue provider.Queue, player provider.Player) error {
	cached := r.entry(roomId)
	playback := room.PlaybackFromQueue(queue, nil)
	var errs []error

	if songId := queue.SongID(); songId != cached.songId {
		if err := r.rooms.Broadcast(ctx, roomId, room.EventMusicSwitched, playback); err != nil {
			errs = append(errs, err)
		} else {
			cached.songId = songId
		}
	}

	if player.IsPlaying != cached.isPlaying {
		eventType := room.EventMusicPaused
		if player.IsPlaying {
			eventType = room.EventMusicPlayed
		}

		if err := r.rooms.Broadcast(ctx, roomId, eventType, playback); err != nil {
			errs = append(errs, err)
		} else {
			cached.isPlaying = player.IsPlaying
		}
	}

	if player.DeviceName != cached.deviceName {
		data := room.NewDeviceData{
			DeviceName: player.DeviceName,
			NewTrack:   playback.NewTrack,
			NewQueue:   playback.NewQueue,
		}
		if err := r.rooms.Broadcast(ctx, roomId, room.EventNewDevice, data); err != nil {
			errs = append(errs, err)
		} else {
			cached.deviceName = player.DeviceName
		}
	}

	return errors.Join(errs...)
}

func (r *Reconciler) entry(roomId string) *snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.cache[roomId]
	if !ok {
		s = &snapshot{}
		r.cache[roomId] = s
	}

	return s
}

// Forget drops the cached snapshot of a room.
func (r *Reconciler) Forget(roomId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.cache, roomId)
}

func (r *Reconciler) prune(active []string) {
	keep := make(map[string]struct{}, len(active))
	for _, id := range active {
		keep[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id := range r.cache {
		if _, ok := keep[id]; !ok {
			delete(r.cache, id)
		}
	}
}
