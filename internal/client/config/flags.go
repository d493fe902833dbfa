package config

import (
	"flag"
	"os"

	"github.com/docsnap/docsnap/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the photo server (default from Config)
//	-o string   output directory for exported PDFs
//	-m          use the mobile capture profile (outward camera)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-o", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the photo server")
	fs.StringVar(&cfg.OutputDir, "o", cfg.OutputDir, "output directory for exported PDFs")
	fs.BoolVar(&cfg.Mobile, "m", cfg.Mobile, "use the mobile capture profile")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
