package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"

	"github.com/weiihann/benchtracker/kvstore"
	"github.com/weiihann/benchtracker/tracker"
	"github.com/weiihann/benchtracker/workload"
)

// ErrNoOperations is returned when the workload is empty.
var ErrNoOperations = errors.New("workload has no operations")

// RunConfig holds parameters for a single benchmark case.
type RunConfig struct {
	WorkloadPath string
	DBDir        string
	Repeats      int
	Timeout      time.Duration
}

// Runner replays workloads against one backend.
type Runner struct {
	Backend string
	Tracker *tracker.Tracker
	Workers int
	Logger  *slog.Logger
}

// NewRunner creates a Runner for the named backend. The tracker is
// shared with every worker goroutine and reset at the start of each Run.
func NewRunner(
	backend string,
	t *tracker.Tracker,
	workers int,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		Backend: backend,
		Tracker: t,
		Workers: max(workers, 1),
		Logger:  logger.With(slog.String("backend", backend)),
	}
}

// Run executes the workload once as the real pass and Repeats-1 more
// times as nested redundant passes, then returns the measurements.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	repeats := max(cfg.Repeats, 1)

	ops, err := loadWorkload(cfg.WorkloadPath)
	if err != nil {
		return nil, err
	}

	dbDir := kvstore.ResolveDir(cfg.DBDir, r.Backend)

	if kvstore.IsPersistent(r.Backend) {
		if err := os.RemoveAll(dbDir); err != nil {
			return nil, fmt.Errorf("clean db dir %s: %w", dbDir, err)
		}

		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir %s: %w", dbDir, err)
		}
	}

	store, err := kvstore.Open(r.Backend, dbDir)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	partitions := partitionsOf(ops)

	if err := seed(store, ops, partitions); err != nil {
		return nil, fmt.Errorf("seed %s: %w", r.Backend, err)
	}

	r.Tracker.ResetStorageTracker()
	r.Tracker.ResetRedundant()

	tracked := kvstore.NewTracked(store, r.Tracker)

	r.Logger.InfoContext(ctx, "starting benchmark",
		slog.Int("operations", len(ops)),
		slog.Int("repeats", repeats),
		slog.Int("workers", r.Workers),
		slog.String("db_dir", dbDir),
	)

	r.Tracker.Instant()

	if err := r.measure(ctx, tracked, ops, partitions, repeats); err != nil {
		r.Tracker.ResetRedundant()

		return nil, fmt.Errorf("benchmark %s: %w", r.Backend, err)
	}

	elapsed := r.Tracker.Elapsed()
	redundant := r.Tracker.RedundantTime()
	corrected := max(elapsed-redundant, 0)

	r.Logger.InfoContext(ctx, "benchmark finished",
		slog.Duration("elapsed", elapsed),
		slog.Duration("redundant", redundant),
		slog.Duration("corrected", corrected),
	)

	buckets := r.Tracker.Buckets()

	result := &Result{
		RunID:       uuid.NewString(),
		Backend:     r.Backend,
		Operations:  len(ops),
		Repeats:     repeats,
		Workers:     r.Workers,
		ElapsedNs:   elapsed.Nanoseconds(),
		RedundantNs: redundant.Nanoseconds(),
		CorrectedNs: corrected.Nanoseconds(),
		Buckets:     len(buckets),
		Summary:     r.Tracker.Summary(),
	}

	for _, b := range buckets {
		result.KeysRead += int(b.Read)
		result.KeysWritten += int(b.Written)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	result.PeakMemoryBytes = m.Sys

	if kvstore.IsPersistent(r.Backend) {
		dbSize, err := dirSize(dbDir)
		if err != nil {
			r.Logger.Warn("failed to measure db size",
				slog.String("error", err.Error()),
			)
		}

		result.DBSizeBytes = dbSize
	}

	return result, nil
}

// measure runs the real pass and the nested repeats. Each EnterBlock is
// paired with an ExitBlock on success; on failure the caller resets the
// tracker instead.
func (r *Runner) measure(
	ctx context.Context,
	s *kvstore.Tracked,
	ops []workload.Operation,
	partitions map[string]kvstore.Partition,
	repeats int,
) error {
	r.Tracker.EnterBlock()

	if err := r.execute(ctx, s, ops, partitions); err != nil {
		return fmt.Errorf("real pass: %w", err)
	}

	for i := 1; i < repeats; i++ {
		r.Tracker.EnterBlock()
		err := r.execute(ctx, s, ops, partitions)
		r.Tracker.ExitBlock()

		if err != nil {
			return fmt.Errorf("repeat %d: %w", i, err)
		}
	}

	r.Tracker.ExitBlock()

	return nil
}

// execute applies ops using r.Workers goroutines. Operations on the
// same physical key always go to the same worker, in workload order, so
// the tracked records do not depend on scheduling.
func (r *Runner) execute(
	ctx context.Context,
	s *kvstore.Tracked,
	ops []workload.Operation,
	partitions map[string]kvstore.Partition,
) error {
	lanes := make([][]workload.Operation, r.Workers)
	for _, op := range ops {
		lane := murmur3.Sum32(physicalKey(op, partitions)) % uint32(r.Workers)
		lanes[lane] = append(lanes[lane], op)
	}

	g, ctx := errgroup.WithContext(ctx)

	for _, lane := range lanes {
		g.Go(func() error {
			for i, op := range lane {
				if i%256 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}

				if err := apply(s, op, partitions); err != nil {
					return fmt.Errorf("%s %s: %w", op.Op, op.Key, err)
				}
			}

			return nil
		})
	}

	return g.Wait()
}

func apply(
	s *kvstore.Tracked,
	op workload.Operation,
	partitions map[string]kvstore.Partition,
) error {
	var err error

	switch op.Op {
	case workload.OpRead:
		_, err = s.Get(op.Key)
	case workload.OpWrite:
		err = s.Put(op.Key, op.Value)
	case workload.OpDelete:
		err = s.Delete(op.Key)
	case workload.OpChildRead:
		_, err = s.Child(partitions[string(op.Partition)]).Get(op.Key)
	case workload.OpChildWrite:
		err = s.Child(partitions[string(op.Partition)]).Put(op.Key, op.Value)
	case workload.OpChildDelete:
		err = s.Child(partitions[string(op.Partition)]).Delete(op.Key)
	default:
		err = fmt.Errorf("unknown operation")
	}

	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}

	return err
}

// seed stores an initial value for every key the workload reads, so
// that reads hit the backend. Seeding is not tracked.
func seed(
	store kvstore.Store,
	ops []workload.Operation,
	partitions map[string]kvstore.Partition,
) error {
	for _, op := range ops {
		if !op.IsRead() {
			continue
		}

		key := physicalKey(op, partitions)
		if err := store.Put(key, key); err != nil {
			return err
		}
	}

	return nil
}

func partitionsOf(ops []workload.Operation) map[string]kvstore.Partition {
	partitions := make(map[string]kvstore.Partition)
	for _, op := range ops {
		if !op.IsChild() {
			continue
		}

		if _, ok := partitions[string(op.Partition)]; !ok {
			partitions[string(op.Partition)] = kvstore.NewPartition(op.Partition)
		}
	}

	return partitions
}

func physicalKey(op workload.Operation, partitions map[string]kvstore.Partition) []byte {
	if op.IsChild() {
		return partitions[string(op.Partition)].Key(op.Key)
	}

	return op.Key
}

func loadWorkload(path string) ([]workload.Operation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workload %s: %w", path, err)
	}
	defer f.Close()

	ops, err := workload.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load workload %s: %w", path, err)
	}

	if len(ops) == 0 {
		return nil, ErrNoOperations
	}

	return ops, nil
}

func dirSize(path string) (uint64, error) {
	var size uint64

	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += uint64(info.Size())
		}

		return nil
	})

	return size, err
}
