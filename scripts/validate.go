package main

import (
	"flag"

	"busline/internal/logger"
	"busline/internal/validation"
)

func main() {
	var baseURL string
	flag.StringVar(&baseURL, "url", "http://localhost:8081", "Base URL for API validation")
	flag.Parse()

	logger.Init("info", "text")

	if err := validation.RunValidation(baseURL); err != nil {
		logger.Fatal("Validation failed", "error", err)
	}
}
