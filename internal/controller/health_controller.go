package controller

import (
	"context"
	"exam_prep_backend/internal/util"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// HealthCheck 单个依赖的探测函数
type HealthCheck func(ctx context.Context) error

type HealthController struct {
	checks map[string]HealthCheck
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	checks := map[string]HealthCheck{}
	if db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return &HealthController{checks: checks}
}

// @Summary 健康检查
// @Description 检查数据库和 Redis 连接
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	probeCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	components := gin.H{}
	healthy := true
	for name, check := range c.checks {
		if err := check(probeCtx); err != nil {
			components[name] = "down"
			healthy = false
			continue
		}
		components[name] = "up"
	}

	if !healthy {
		util.ErrorWithData(ctx, http.StatusServiceUnavailable, "Dependency unavailable", gin.H{
			"status":     "degraded",
			"components": components,
		})
		return
	}

	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
	})
}
