package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func RateLimitKey(userID uuid.UUID) string {
	return fmt.Sprintf("ratelimit:%s", userID)
}

// HealthSnapshotKey is where the last aggregated health report is cached.
const HealthSnapshotKey = "health:snapshot"

func SharedResultKey(tokenPrefix string) string {
	return fmt.Sprintf("share:result:%s", tokenPrefix)
}
