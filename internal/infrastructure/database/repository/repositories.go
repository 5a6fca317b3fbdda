package repository

import (
	"riskforge/internal/infrastructure/database"
)

// Repositories bundles all repositories sharing one database handle
type Repositories struct {
	ThreatModels *ThreatModelRepository
	Results      *ResultRepository
}

// New creates all repositories
func New(db *database.PostgresDB) *Repositories {
	return &Repositories{
		ThreatModels: NewThreatModelRepository(db),
		Results:      NewResultRepository(db),
	}
}
