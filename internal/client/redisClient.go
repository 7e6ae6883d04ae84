package client

import (
	"cart-recovery-service/internal/config"

	rd "github.com/redis/go-redis/v9"
)

// InitRedisClient returns nil when no address is configured; the scheduler
// then runs without the advisory pass lock.
func InitRedisClient(redisCfg *config.Redis) *rd.Client {
	if redisCfg.Addr == "" {
		return nil
	}
	return rd.NewClient(&rd.Options{
		Addr: redisCfg.Addr,
		DB:   redisCfg.DB,
	})
}
