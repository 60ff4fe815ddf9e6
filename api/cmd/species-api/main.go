package main

import (
	"context"
	"log"

	"species-bot/api/internal/config"
	"species-bot/api/internal/handle"
	"species-bot/api/internal/handoff"
	"species-bot/api/internal/httpserver"
	"species-bot/api/internal/species/gemini"
	"species-bot/api/internal/species/imagecodec"
	"species-bot/api/internal/species/pipeline"
)

func main() {
	cfg := config.Load()

	client, err := gemini.New(context.Background(), gemini.Options{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.GeminiModel,
		JSONMode: cfg.GeminiJSONMode,
	})
	if err != nil {
		log.Fatalf("gemini: %v", err)
	}
	defer client.Close()

	p := pipeline.New(imagecodec.New(cfg.MaxUploadBytes), client)
	h := handle.New(p, handoff.New(cfg.HandoffTTL), cfg.MinDisplay, cfg.MaxUploadBytes)

	addr := ":" + cfg.Port
	log.Printf("species-api: model %s", client.Model())
	if err := httpserver.StartHTTP(addr, httpserver.NewRouter(h)); err != nil {
		log.Fatal(err)
	}
}
