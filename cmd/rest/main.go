package main

import (
	"context"
	"log"
	"time"

	"atlas-be/internal/bootstrap"
	"atlas-be/internal/config"
	"atlas-be/internal/server"
	"atlas-be/internal/tracer"
	"atlas-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting retry upload worker...")
		if err := container.RetryWorkerService.Consume(context.Background()); err != nil {
			log.Printf("Background worker error: %v", err)
		}
	}()

	// Period transitions (active -> past_due -> canceled) sweep every 6 hours;
	// the /api/ops endpoints stay available for out-of-band runs.
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := container.BillingService.RunBillingCycle(context.Background()); err != nil {
				log.Printf("Background billing cycle error: %v", err)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := container.OpsService.RunEscalationMonitor(context.Background()); err != nil {
				log.Printf("Background escalation monitor error: %v", err)
			}
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
