package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/hudsonjuan/digno-acai/internal/catalog"
	"github.com/hudsonjuan/digno-acai/internal/config"
	"github.com/hudsonjuan/digno-acai/internal/order"
	"github.com/hudsonjuan/digno-acai/internal/router"
	"github.com/hudsonjuan/digno-acai/internal/service"
	"github.com/hudsonjuan/digno-acai/internal/store"
	"github.com/hudsonjuan/digno-acai/internal/ws"
)

func main() {
	cfg := config.Load()

	snapshots, err := store.NewSnapshots(cfg.DataDir)
	if err != nil {
		log.Fatalf("open snapshot store: %v", err)
	}

	cat := catalog.Default()
	engine := order.NewEngine(cat)
	formatter := order.NewFormatter(cat, cfg.PixKey)

	hub := ws.NewHub()

	svc := service.NewSessionService(engine, formatter, snapshots, store.NewSessionNames(), hub, service.Config{
		IdleTimeout:     cfg.IdleTimeout,
		ResetDelay:      cfg.ResetDelay,
		WhatsAppNumber:  cfg.WhatsAppNumber,
		PixKey:          cfg.PixKey,
		DefaultTerminal: cfg.DefaultTerminal,
	})

	// Catch reconnecting kiosk screens up on their session's current state
	hub.OnSubscribe(svc.ReplayEvents)
	go hub.Run()

	r := router.New(cfg, cat, svc, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
