package migration

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"radiojournal/domain"
	"radiojournal/pkg/apperrors"
)

// Phase is the driver's current state.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseResolvingScope Phase = "resolving_scope"
	PhaseWalking        Phase = "walking"
	PhaseRecomputing    Phase = "recomputing"
	PhaseCommitting     Phase = "committing"
	PhaseDone           Phase = "done"
	PhaseFailed         Phase = "failed"
)

// Scope is the resolved target of one migration run.
type Scope struct {
	StationID domain.ID
	Station   *domain.StationItem

	// FirstPlayTime is decoded from the station's first_play_id and bounds
	// the partition walk. Zero for migrations that do not walk partitions.
	FirstPlayTime time.Time
}

// Migration is one named migration. Implementations are single-use: the
// driver runs a fresh instance per invocation, and aggregating migrations
// keep their accumulation state between PlanPartition calls.
type Migration interface {
	Name() string

	// WalksPartitions reports whether the migration visits daily play
	// partitions. When false the driver calls PlanScope exactly once.
	WalksPartitions() bool

	// PlanPartition recomputes derived values for one partition.
	PlanPartition(ctx context.Context, scope *Scope, partition string) (Plan, error)

	// PlanScope recomputes derived values for a non-partitioned row set.
	PlanScope(ctx context.Context, scope *Scope) (Plan, error)

	// Finalize returns whatever must be committed after the walk, for
	// migrations that aggregate across partitions. May return an empty plan.
	Finalize(ctx context.Context, scope *Scope) (Plan, error)
}

// Report is the outcome of one migration run.
type Report struct {
	Phase             Phase
	PartitionsVisited int
	CeilingReached    bool
	RowsRead          int
	PutsCommitted     int
	UpdatesCommitted  int
	ChunkFailures     int
	Conflicts         int
}

// DriverOptions tunes a driver.
type DriverOptions struct {
	// FailFast aborts the migration on the first failed chunk instead of
	// continuing best-effort with the next group.
	FailFast bool

	// PartitionCeiling overrides DefaultPartitionCeiling when positive.
	PartitionCeiling int

	// Now substitutes the wall clock, for tests.
	Now func() time.Time
}

// Driver runs one migration as a single sequential pass: resolve the scope,
// walk partitions, recompute, commit. Re-invocation is the only resume
// mechanism; every migration recomputes from immutable source rows, so
// re-running is safe.
type Driver struct {
	store  Store
	writer *Writer
	logger *zap.Logger
	opts   DriverOptions

	phase Phase
}

// NewDriver creates a driver.
func NewDriver(store Store, logger *zap.Logger, opts DriverOptions) *Driver {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Driver{
		store:  store,
		writer: NewWriter(store, logger),
		logger: logger,
		opts:   opts,
		phase:  PhaseIdle,
	}
}

// Phase returns the driver's current phase.
func (d *Driver) Phase() Phase {
	return d.phase
}

func (d *Driver) transition(phase Phase) {
	d.logger.Debug("phase transition", zap.String("from", string(d.phase)), zap.String("to", string(phase)))
	d.phase = phase
}

// Run executes the migration against one station. The returned report is
// valid even when err is non-nil.
func (d *Driver) Run(ctx context.Context, m Migration, stationID domain.ID) (*Report, error) {
	report := &Report{Phase: PhaseFailed}
	logger := d.logger.With(
		zap.String("migration", m.Name()),
		zap.String("station_id", stationID.String()),
	)

	d.transition(PhaseResolvingScope)
	scope, err := d.resolveScope(ctx, m, stationID)
	if err != nil {
		d.transition(PhaseFailed)
		return report, err
	}
	logger.Info("processing station", zap.String("station", scope.Station.Name))

	if m.WalksPartitions() {
		logger.Info("first play partition",
			zap.String("partition", domain.PlayPartition(scope.FirstPlayTime)),
		)

		walker := NewWalker(d.opts.Now(), scope.FirstPlayTime, d.opts.PartitionCeiling)
		for {
			d.transition(PhaseWalking)
			partition, ok := walker.Next()
			if !ok {
				break
			}
			logger.Info("processing partition",
				zap.String("partition", partition),
				zap.Int("visited", walker.Visited()),
			)

			d.transition(PhaseRecomputing)
			plan, err := m.PlanPartition(ctx, scope, partition)
			if err != nil {
				d.transition(PhaseFailed)
				return report, fmt.Errorf("recompute partition %s: %w", partition, err)
			}
			report.RowsRead += plan.RowsRead

			if aborted, err := d.commit(ctx, report, plan); err != nil || aborted {
				return report, err
			}

			report.PartitionsVisited = walker.Visited()
		}
		report.PartitionsVisited = walker.Visited()
		report.CeilingReached = walker.CeilingReached()
		if walker.CeilingReached() {
			logger.Warn("partition walk stopped at safety ceiling; results may be incomplete",
				zap.Int("visited", walker.Visited()),
			)
		}

		d.transition(PhaseRecomputing)
		plan, err := m.Finalize(ctx, scope)
		if err != nil {
			d.transition(PhaseFailed)
			return report, fmt.Errorf("finalize: %w", err)
		}
		report.RowsRead += plan.RowsRead
		if aborted, err := d.commit(ctx, report, plan); err != nil || aborted {
			return report, err
		}
	} else {
		d.transition(PhaseRecomputing)
		plan, err := m.PlanScope(ctx, scope)
		if err != nil {
			d.transition(PhaseFailed)
			return report, fmt.Errorf("recompute: %w", err)
		}
		report.RowsRead += plan.RowsRead
		if aborted, err := d.commit(ctx, report, plan); err != nil || aborted {
			return report, err
		}
	}

	d.transition(PhaseDone)
	report.Phase = PhaseDone
	logger.Info("migration done",
		zap.Int("partitions_visited", report.PartitionsVisited),
		zap.Int("rows_read", report.RowsRead),
		zap.Int("puts_committed", report.PutsCommitted),
		zap.Int("updates_committed", report.UpdatesCommitted),
		zap.Int("chunk_failures", report.ChunkFailures),
	)
	return report, nil
}

// resolveScope loads the station and, for partition-walked migrations,
// decodes the lower time bound from its first play identity.
func (d *Driver) resolveScope(ctx context.Context, m Migration, stationID domain.ID) (*Scope, error) {
	var station domain.StationItem
	err := d.store.GetItem(ctx, domain.StationKey(stationID), &station)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewScopeResolutionError(
				fmt.Sprintf("station %s not found", stationID),
			)
		}
		return nil, apperrors.NewScopeResolutionError("load station").WithCause(err)
	}

	scope := &Scope{StationID: stationID, Station: &station}
	if !m.WalksPartitions() {
		return scope, nil
	}

	if station.FirstPlayID == nil {
		return nil, apperrors.NewScopeResolutionError(
			fmt.Sprintf("station %s has no first_play_id", stationID),
		)
	}
	scope.FirstPlayTime = domain.IDTime(*station.FirstPlayID)
	return scope, nil
}

// commit hands a plan to the writer and folds the result into the report.
// aborted is true when the fail-fast policy stops the run after a conflict.
func (d *Driver) commit(ctx context.Context, report *Report, plan Plan) (aborted bool, err error) {
	if plan.Empty() {
		return false, nil
	}

	d.transition(PhaseCommitting)
	result, err := d.writer.Commit(ctx, plan, d.opts.FailFast)
	report.PutsCommitted += result.PutsCommitted
	report.UpdatesCommitted += result.UpdatesCommitted
	report.ChunkFailures += len(result.Failures)
	report.Conflicts += result.Conflicts()

	if err != nil {
		d.transition(PhaseFailed)
		return true, apperrors.NewStoreUnavailableError("commit failed").WithCause(err)
	}
	if d.opts.FailFast && len(result.Failures) > 0 {
		d.transition(PhaseFailed)
		return true, apperrors.NewConcurrencyConflictError(
			"aborting after failed chunk (fail-fast)",
		)
	}
	return false, nil
}
