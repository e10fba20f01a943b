package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"codequest/internal/cache"
	"codequest/internal/database"
	"codequest/internal/utils"
)

type CommonHandler struct {
	db    database.Service
	cache cache.Cache
}

func NewCommonHandler(db database.Service, c cache.Cache) *CommonHandler {
	return &CommonHandler{db: db, cache: c}
}

func (h *CommonHandler) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the CodeQuest API"})
}

// HealthHandler reports 503 when MongoDB is unreachable. Redis only degrades caching, so
// its failure is reported without failing the check.
func (h *CommonHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	dbHealth := h.db.Health()
	status := http.StatusOK
	if dbHealth["error"] != "" {
		status = http.StatusServiceUnavailable
	}

	cacheStatus := "up"
	if _, disabled := h.cache.(cache.NopCache); disabled {
		cacheStatus = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := h.cache.Health(ctx); err != nil {
			log.Warn().Err(err).Msg("Cache health check failed")
			cacheStatus = "down"
		}
	}

	utils.RespondWithJSON(w, status, map[string]interface{}{
		"database": dbHealth,
		"cache":    cacheStatus,
	})
}
