package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/habitlit/internal/api"
	"github.com/julianstephens/habitlit/internal/cache"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/progression"
)

type ServeCmd struct {
	Addr     string `help:"Listen address (overrides http.addr)." default:""`
	RedisURL string `name:"redis" help:"Redis URL for the stats cache (overrides redis.url)." default:""`
}

func (c *ServeCmd) Run(ctx *Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.HTTP.Addr
	}
	redisURL := c.RedisURL
	if redisURL == "" {
		redisURL = ctx.Config.Redis.URL
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the server process lives long enough for an in-process cache to pay off
	var statsCache cache.Cache = cache.NewMemory()
	if redisURL != "" {
		rc, err := cache.NewRedis(sigCtx, redisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rc.Close()
		statsCache = rc
		logger.Info("Stats cache enabled", "backend", "redis")
	}

	engine := progression.New(ctx.Store, progression.Options{
		Clock:    ctx.Clock,
		XP:       ctx.Config.XP,
		Cache:    statsCache,
		CacheTTL: ctx.Config.Redis.TTL,
	})
	router := api.NewRouter(api.NewHandler(engine), ctx.Config.HTTP)

	fmt.Printf("habitlit API listening on %s\n", addr)
	return api.Serve(sigCtx, addr, router)
}
