package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hugh/docvault/internal/api/dto"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

type dependency struct {
	name string
	ping func(context.Context) error
}

// HealthHandler reports whether the service's backing stores answer.
type HealthHandler struct {
	deps []dependency
}

// NewHealthHandler checks db and, when non-nil, redis.
func NewHealthHandler(db *gorm.DB, rdb *redis.Client) *HealthHandler {
	deps := []dependency{{name: "database", ping: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}}
	if rdb != nil {
		deps = append(deps, dependency{name: "redis", ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	return &HealthHandler{deps: deps}
}

// Health answers 503 when any dependency fails its ping.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := dto.HealthResponse{Status: dto.StatusHealthy, Services: make(map[string]string, len(h.deps))}
	for _, d := range h.deps {
		state := dto.StatusHealthy
		if err := d.ping(ctx); err != nil {
			state = dto.StatusUnhealthy
			resp.Status = dto.StatusUnhealthy
		}
		resp.Services[d.name] = state
	}

	code := http.StatusOK
	if resp.Status != dto.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// Ready answers as soon as the process serves HTTP; it pings nothing.
func (h *HealthHandler) Ready(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}
