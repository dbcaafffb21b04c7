package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// healthPool is the slice of the connection pool the readiness probe needs.
type healthPool interface {
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	pool        healthPool
	redisClient *redis.Client
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pool healthPool, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		pool:        pool,
		redisClient: redisClient,
	}
}

// Liveness returns 200 if the process is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 once both stores answer and the service catalog has
// been seeded. Scheduler loops read due dates from the services table, so an
// empty catalog means the instance is not ready to watch anything.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "postgres unhealthy", err.Error())
		return
	}

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "redis unhealthy", err.Error())
		return
	}

	var seeded int64
	if err := h.pool.QueryRow(ctx, `SELECT COUNT(*) FROM services`).Scan(&seeded); err != nil {
		writeError(w, http.StatusServiceUnavailable, "catalog check failed", err.Error())
		return
	}
	if seeded == 0 {
		writeError(w, http.StatusServiceUnavailable, "catalog empty", "services table has no rows")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"postgres": "ok",
		"redis":    "ok",
		"services": strconv.FormatInt(seeded, 10),
	})
}
