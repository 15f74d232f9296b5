package migration

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"radiojournal/domain"
)

// RelocatePlayIndex moves play rows from the superseded secondary-index
// scheme (gsi1pk=STATION#<sid>#TRACK#<tid>, gsi1sk=PLAY#<pid>) to the current
// one (gsi1pk=TRACK#<tid>, no gsi1sk), partition by partition. The row's
// primary identity is untouched; only the index keys change. Rows already on
// the current scheme fall outside the filter, so a second run plans nothing.
type RelocatePlayIndex struct {
	store  Store
	logger *zap.Logger
}

// NewRelocatePlayIndex creates the migration.
func NewRelocatePlayIndex(store Store, logger *zap.Logger) *RelocatePlayIndex {
	return &RelocatePlayIndex{store: store, logger: logger}
}

func (m *RelocatePlayIndex) Name() string { return "gsi-reuse-sk" }

func (m *RelocatePlayIndex) WalksPartitions() bool { return true }

func (m *RelocatePlayIndex) PlanScope(ctx context.Context, scope *Scope) (Plan, error) {
	return Plan{}, nil
}

// PlanPartition plans one relocation update per play row still on the old
// scheme. The new index key is recomputed from the row's own track_id, never
// from the old index key, so the rewrite is deterministic and idempotent.
func (m *RelocatePlayIndex) PlanPartition(ctx context.Context, scope *Scope, partition string) (Plan, error) {
	plays, err := collect(ctx, m.store.Query(ctx, Query{
		PK:         domain.PlaysPK(scope.StationID, partition),
		SKPrefix:   domain.PlaySKPrefix(),
		Filter:     Or(BeginsWith("gsi1pk", "STATION#"), Exists("gsi1sk")),
		Projection: []string{"pk", "sk", "track_id"},
	}))
	if err != nil {
		return Plan{}, fmt.Errorf("query plays: %w", err)
	}

	plan := Plan{RowsRead: len(plays)}
	for _, play := range plays {
		pk, _ := stringAttr(play, "pk")
		sk, ok := stringAttr(play, "sk")
		if !ok {
			return Plan{}, fmt.Errorf("play row missing sk attribute")
		}
		trackID, ok := stringAttr(play, "track_id")
		if !ok {
			return Plan{}, fmt.Errorf("play row %s missing track_id attribute", sk)
		}
		id, err := domain.ParseID(trackID)
		if err != nil {
			return Plan{}, fmt.Errorf("play row %s: %w", sk, err)
		}

		plan.Updates = append(plan.Updates, Update{
			Key:    domain.Key{PK: pk, SK: sk},
			Set:    []Assign{{Name: "gsi1pk", Value: domain.PlayGSI1PK(id)}},
			Remove: []string{"gsi1sk"},
		})
	}
	m.logger.Info("got plays to update", zap.Int("count", len(plan.Updates)))
	return plan, nil
}

// Finalize has nothing to commit; relocation lands per partition.
func (m *RelocatePlayIndex) Finalize(ctx context.Context, scope *Scope) (Plan, error) {
	return Plan{}, nil
}
