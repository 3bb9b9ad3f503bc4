package main

import (
	"log"
	"net/http"

	"litreview/internal/api"
	"litreview/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("litreview api listening on %s providers=%q", cfg.APIAddr, cfg.Providers)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
