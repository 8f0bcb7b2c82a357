package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"livestock-health/internal/adapters/auth/odin"
	"livestock-health/internal/ports/auth"
	"livestock-health/internal/router"
)

func main() {
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Odin por env; si no está configurado, modo dev (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if base := os.Getenv("ODIN_BASE_URL"); base != "" {
		client := odin.NewClient(odin.Config{
			BaseURL: base,
			APIKey:  os.Getenv("ODIN_API_KEY"),
		})
		if client.IsConfigured() {
			verifier = odin.NewVerifier(client)
		}
	}

	r := router.NewRouter(router.Options{AuthVerifier: verifier})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Printf("starting server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
