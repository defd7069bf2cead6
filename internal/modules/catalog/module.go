package catalog

import (
	"github.com/jmoiron/sqlx"
	"github.com/trackhaus/trackhaus-backend/internal/modules/catalog/domain"
	persistence "github.com/trackhaus/trackhaus-backend/internal/modules/catalog/infrastructure/persistence/postgres"
)

// Module exposes the catalog surfaces the purchase flow depends on.
type Module struct {
	repo *persistence.PgTrackRepository
}

// NewModule creates and initializes the Catalog module
func NewModule(db *sqlx.DB) *Module {
	return &Module{repo: persistence.NewTrackRepository(db)}
}

// TrackFinder returns the read-only track lookup
func (m *Module) TrackFinder() domain.TrackFinder {
	return m.repo
}

// StatsUpdater returns the atomic sale aggregate updater
func (m *Module) StatsUpdater() domain.StatsUpdater {
	return m.repo
}
