package usecase

import (
	"context"
	"time"
)

// Pinger is a dependency the health check pings.
type Pinger func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) (healthy bool, components map[string]string)
}

type healthUsecase struct {
	required map[string]Pinger
	optional map[string]Pinger
}

// NewHealthUsecase takes required dependencies (failure marks the service unhealthy)
// and optional ones (failure is reported as degraded).
func NewHealthUsecase(required, optional map[string]Pinger) HealthUsecase {
	return &healthUsecase{required: required, optional: optional}
}

func (u *healthUsecase) Check(ctx context.Context) (bool, map[string]string) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	healthy := true
	components := map[string]string{}
	for name, ping := range u.required {
		if err := ping(ctx); err != nil {
			healthy = false
			components[name] = "down"
			continue
		}
		components[name] = "ok"
	}
	for name, ping := range u.optional {
		if err := ping(ctx); err != nil {
			components[name] = "degraded"
			continue
		}
		components[name] = "ok"
	}
	return healthy, components
}
