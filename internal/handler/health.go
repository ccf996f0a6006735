package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ArapCheruiyot/superkeeper/internal/infra"
	"github.com/ArapCheruiyot/superkeeper/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response: DB and Redis connectivity,
// the recognizer circuit breaker position, and the dead-letter depth of each
// notification queue. An open breaker or a non-empty DLQ degrades nothing —
// the sidecar is best-effort — so only DB/Redis failures turn the status 503.
func Health(db *gorm.DB, rdb *redis.Client, recognizer *infra.RecognizerClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		dlq := gin.H{}
		for _, q := range []string{worker.QueueImageSaved, worker.QueueItemEmbed} {
			if n, err := worker.DLQLength(ctx, rdb, q); err == nil {
				dlq[q] = n
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":         status == http.StatusOK,
			"db":         dbStatus,
			"redis":      redisStatus,
			"recognizer": recognizer.BreakerState(),
			"dlq":        dlq,
		})
	}
}
