package main

import (
	"context"
	"flag"
	"log"
	"time"

	"venuehub/internal/validation"
)

func main() {
	var baseURL string
	var timeout time.Duration
	flag.StringVar(&baseURL, "url", "http://localhost:8081", "Base URL for API validation")
	flag.DurationVar(&timeout, "timeout", time.Minute, "Overall validation timeout")
	flag.Parse()

	log.Printf("Starting API validation against: %s", baseURL)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := validation.NewSmokeValidator(baseURL).ValidateAll(ctx); err != nil {
		log.Fatalf("Validation failed: %v", err)
	}

	log.Println("Validation passed")
}
