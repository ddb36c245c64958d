package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"devhub/internal/domain/picture"
	applog "devhub/internal/pkg/logger"
	"devhub/internal/worker"

	"go.uber.org/zap"
)

const deleteTimeout = 10 * time.Second

// Janitor deletes replaced or removed picture files in the background.
type Janitor struct {
	store  picture.Storage
	pool   *worker.Pool
	logger *zap.Logger
	done   chan struct{}
	once   sync.Once

	started atomic.Bool
}

func NewJanitor(store picture.Storage, workers int, logger *zap.Logger) *Janitor {
	logger = applog.OrNop(logger)
	return &Janitor{
		store:  store,
		pool:   worker.NewPool(workers, 256),
		logger: logger.Named("picture-janitor"),
		done:   make(chan struct{}),
	}
}

var _ picture.Discarder = (*Janitor)(nil)

// Start runs the workers until Stop is called or ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	if !j.started.CompareAndSwap(false, true) {
		return
	}
	results := j.pool.Run(ctx)
	go func() {
		defer close(j.done)
		for r := range results {
			if r.Err != nil {
				j.logger.Warn("picture delete failed", zap.String("file", r.Name), zap.Error(r.Err))
				continue
			}
			j.logger.Debug("picture deleted", zap.String("file", r.Name))
		}
	}()
}

// Discard schedules name for deletion. When the queue is full the file is
// deleted inline.
func (j *Janitor) Discard(name string) {
	if j == nil || name == "" {
		return
	}
	task := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
		defer cancel()
		return j.store.Delete(ctx, name)
	}

	ok, err := j.pool.TrySubmit(name, task)
	if ok {
		return
	}
	if err != nil {
		j.logger.Debug("janitor stopped, deleting inline", zap.String("file", name))
	} else {
		j.logger.Warn("janitor queue full, deleting inline", zap.String("file", name))
	}
	if err := task(context.Background()); err != nil {
		j.logger.Warn("picture delete failed", zap.String("file", name), zap.Error(err))
	}
}

// Stop closes the queue and waits for pending deletions, bounded by ctx.
func (j *Janitor) Stop(ctx context.Context) {
	j.once.Do(j.pool.Close)
	if !j.started.Load() {
		return
	}
	select {
	case <-j.done:
	case <-ctx.Done():
	}
}
