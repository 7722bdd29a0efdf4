package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tableside/config"
	"tableside/internal/api"
	"tableside/internal/cart"
	"tableside/internal/selection"
	"tableside/internal/session"
	"tableside/internal/storage"
)

func main() {
	cfg := config.Load()

	store := initStorage(cfg)
	tokens := storage.NewTokenAccessor(store)

	client := api.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.HTTPTimeout}, tokens)

	sessions := session.NewStore(client, tokens)
	client.SetAuthExpiredHandler(sessions.HandleAuthExpired)

	carts := cart.NewStore(client)
	selections := selection.NewStore(store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions.Initialize(ctx)
	log.Printf("[tableside] session: %s", sessions.State())

	if sessions.IsAuthenticated() {
		restaurants, err := client.ListRestaurants(ctx)
		if err != nil {
			log.Printf("[tableside] could not load restaurants: %v", err)
		} else {
			selections.SetRestaurants(ctx, restaurants)
			if current := selections.CurrentRestaurant(); current != nil {
				log.Printf("[tableside] operating against %q", current.Name)
			} else {
				log.Printf("[tableside] %d restaurants, none selected yet", len(restaurants))
			}
		}
	}

	log.Printf("[tableside] cart: %d items, total %.2f", carts.ItemCount(), carts.Total())
}

func initStorage(cfg config.Config) storage.Store {
	if cfg.RedisAddr != "" {
		log.Printf("[tableside] using redis state at %s", cfg.RedisAddr)
		return storage.NewRedisStore(config.MustInitRedis(cfg.RedisAddr), "tableside")
	}

	store, err := storage.NewFileStore(cfg.StatePath)
	if err != nil {
		log.Printf("[tableside] state file unreadable, falling back to memory: %v", err)
		return storage.NewMemoryStore()
	}
	log.Printf("[tableside] using state file %s", cfg.StatePath)
	return store
}
