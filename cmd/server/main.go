package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"order-desk/internal/adapters/taxapi"
	webAdapter "order-desk/internal/adapters/web"
	"order-desk/internal/app"
	"order-desk/internal/config"
	"order-desk/internal/core"
	"order-desk/internal/db"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	orderService := core.NewOrderService(pool)

	store := core.NewCartStore(cfg.CartTTL())
	store.StartPurge(ctx)

	var tax core.TaxRecalculator
	if cfg.TaxRecalcURL != "" {
		tax = taxapi.New(cfg.TaxRecalcURL)
	} else {
		log.Println("Warning: TAX_RECALC_URL is not set, surcharges will keep their catalog values")
	}

	svc := app.NewAppService(orderService, store, tax, cfg)
	handler := webAdapter.NewHandler(svc, cfg.AllowedOrigins)

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := http.ListenAndServe(":"+cfg.ServerPort, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
