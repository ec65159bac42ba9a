package main

import (
	"flag"
	"log"

	"github.com/go-ferrusgate/ferrusgate/internal/bootstrap"
	"github.com/go-ferrusgate/ferrusgate/internal/config"

	"github.com/gin-gonic/gin"
)

func main() {
	var debug bool
	flag.BoolVar(&debug, "debug", false, "enable debug mode")
	flag.Parse()

	cfg := config.Load()

	if !debug && cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := bootstrap.Run(cfg); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
