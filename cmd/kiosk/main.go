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

	kiosk, err := cli.NewKiosk(cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	kiosk.Run(ctx)

}
