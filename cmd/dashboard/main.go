package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/docsnap/docsnap/internal/client/cli"
	"github.com/docsnap/docsnap/internal/client/config"
	"github.com/docsnap/docsnap/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
