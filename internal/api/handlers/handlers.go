package handlers

import (
	"riskforge/internal/domain/services"
	"riskforge/internal/engine/dread"
	"riskforge/internal/infrastructure/cache"
	"riskforge/internal/infrastructure/database"
	"riskforge/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Models   *ModelsHandler
	Analysis *AnalysisHandler
	Dread    *DreadHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Models   *services.ModelService
	Analysis *services.AnalysisService
	Scorer   *dread.Scorer
	Cache    *cache.RedisCache
	DB       *database.PostgresDB
	Logger   *logger.Logger
	Version  string
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Cache, deps.DB, deps.Version, deps.Logger),
		Models:   NewModelsHandler(deps.Models, deps.Logger),
		Analysis: NewAnalysisHandler(deps.Analysis, deps.Logger),
		Dread:    NewDreadHandler(deps.Scorer, deps.Logger),
	}
}
