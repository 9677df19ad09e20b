package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voicestart/voicestart/internal/config"
	"github.com/voicestart/voicestart/internal/gateway"
)

func main() {
	cfg, err := config.LoadGateway()
	if err != nil {
		log.Fatal("load config: ", err)
	}

	srv, err := gateway.New(gateway.Config{
		BackendURL: cfg.BackendURL,
		ServiceKey: cfg.ServiceKey,
	})
	if err != nil {
		log.Fatal("init gateway: ", err)
	}

	// Write timeout is generous: audio processing submissions can hold
	// the request while the backend stages the object.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(cfg.AllowedOrigins),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("voicestartd listening on :%s, backend %s", cfg.Port, cfg.BackendURL)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error: ", err)
		}
	}()

	<-quit
	log.Println("shutdown signal received, draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("forced shutdown: ", err)
	}
	log.Println("server stopped cleanly")
}
