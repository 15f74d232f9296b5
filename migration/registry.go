package migration

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Factory builds a fresh migration instance for one run.
type Factory func(store Store, logger *zap.Logger) Migration

var registry = map[string]Factory{
	"insert-track-metadata": func(s Store, l *zap.Logger) Migration { return NewInsertTrackMetadata(s, l) },
	"clear-tracks-gsi":      func(s Store, l *zap.Logger) Migration { return NewClearTracksGSI(s, l) },
	"init-track-play-count": func(s Store, l *zap.Logger) Migration { return NewInitTrackPlayCount(s, l) },
	"gsi-reuse-sk":          func(s Store, l *zap.Logger) Migration { return NewRelocatePlayIndex(s, l) },
}

// New builds the named migration.
func New(name string, store Store, logger *zap.Logger) (Migration, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown migration %q (known: %v)", name, Names())
	}
	return factory(store, logger), nil
}

// Names lists the registered migrations in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
