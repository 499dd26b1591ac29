package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spaziopratiche.org/internal/account"
	"spaziopratiche.org/internal/config"
	"spaziopratiche.org/internal/contact"
	"spaziopratiche.org/internal/httpapi"
	"spaziopratiche.org/internal/obs"
	"spaziopratiche.org/internal/scheduling"
	"spaziopratiche.org/internal/store/pg"
	"spaziopratiche.org/internal/stream"
)

var version = "0.3.0"

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	obs.Init()
	obs.SetBuildInfo(version, os.Getenv("SPRATICHE_COMMIT"))

	var (
		accounts  *account.Service
		scheduler scheduling.Service
		contacts  *contact.Service
		probe     httpapi.ReadyProbe
		store     *pg.Store
	)
	if cfg.DatabaseDSN != "" {
		var err error
		store, err = pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		accounts = account.NewService(pg.NewAccounts(store))
		scheduler = pg.NewScheduling(store)
		contacts = contact.NewService(pg.NewContacts(store))
		probe = httpapi.ReadyProbe{DB: store.DB()}
	} else {
		log.Println("SPRATICHE_PG_DSN not set, serving from in-memory stores")
		accounts = account.NewService(account.NewMemoryStore())
		scheduler = scheduling.NewInMemory()
		contacts = contact.NewService(contact.NewMemoryStore())
	}

	api := httpapi.New(probe, version, accounts, scheduler, contacts, stream.New(), httpapi.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting spaziopratiche-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if store != nil {
		_ = store.Close()
	}
	log.Println("Stopped")
}
