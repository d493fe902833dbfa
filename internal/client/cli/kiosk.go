package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docsnap/docsnap/internal/capture"
	"github.com/docsnap/docsnap/internal/capture/device"
	"github.com/docsnap/docsnap/internal/capture/signature"
	"github.com/docsnap/docsnap/internal/client/api"
	"github.com/docsnap/docsnap/internal/client/config"
	"github.com/docsnap/docsnap/internal/export"
	"github.com/docsnap/docsnap/internal/filex"
	"github.com/docsnap/docsnap/internal/logging"
	"github.com/docsnap/docsnap/internal/printview"
)

// Kiosk drives the guided capture flow: camera on, front, back, signature,
// finalize, then print or export the verification sheet.
type Kiosk struct {
	config  *config.Config
	session *capture.Session
	builder *export.Builder
	surface printview.Surface
	logger  logging.Logger
}

func NewKiosk(c *config.Config, logger logging.Logger) (*Kiosk, error) {
	client, err := api.NewClient(c.ServerURL, logger)
	if err != nil {
		return nil, err
	}

	session := capture.NewSession(device.NewWebcam(0), client, logger, capture.Options{
		Mobile:        c.Mobile,
		SecureContext: client.SecureOrigin(),
	})

	return &Kiosk{
		config:  c,
		session: session,
		builder: export.NewBuilder(export.NewHTTPLoader(nil), logger),
		surface: printview.NewBrowserSurface(logger),
		logger:  logger,
	}, nil
}

// Run walks the operator through one or more capture flows until EOF or
// "exit".
//
// Commands:
//
//   - help           — show available commands
//   - start          — turn the camera on
//   - capture        — capture the current side (front, then back)
//   - sign <file>    — load signature strokes from a JSON file
//   - clearsign      — wipe the signature pad
//   - done           — finalize the document
//   - pdf            — export the verification sheet as PDF
//   - print          — open the verification print view
//   - reset          — start over (uploaded photos stay on the server)
//   - exit | quit    — leave the program
func (k *Kiosk) Run(ctx context.Context) {
	defer k.session.StopCamera()

	scanner := bufio.NewScanner(os.Stdin)
	printlnFn("Document capture. Type 'help' for commands.")

	for {
		printlnFn(fmt.Sprintf("kiosk> stage=%s > ", k.session.Stage()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		var err error
		switch cmd {
		case "help":
			printlnFn("Available commands: start, capture, sign <file>, clearsign, done, pdf, print, reset, exit")

		case "start":
			if err = k.session.Start(ctx); err == nil {
				printlnFn("Camera on.")
			}

		case "capture":
			err = k.capture(ctx)

		case "sign":
			if arg == "" {
				printlnFn("Usage: sign <strokes.json>")
				continue
			}
			err = k.sign(arg)

		case "clearsign":
			k.session.Pad().Clear()
			printlnFn("Signature cleared.")

		case "done":
			err = k.finalize()

		case "pdf":
			err = k.exportPDF(ctx)

		case "print":
			err = k.print(ctx)

		case "reset":
			k.session.Reset()
			printlnFn("Starting over.")

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}

func (k *Kiosk) capture(ctx context.Context) error {
	stage := k.session.Stage()
	photo, err := k.session.CaptureFrame(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Captured %s: %s", stage, photo.Filename))
	if k.session.Stage() == capture.StageSignature {
		printlnFn("Both sides captured. Load a signature with 'sign <file>' and finish with 'done'.")
		k.session.StopCamera()
	}
	return nil
}

// sign loads strokes from a JSON file: an array of strokes, each an array
// of {"x":..,"y":..} points in pad coordinates.
func (k *Kiosk) sign(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read strokes: %w", err)
	}

	var strokes [][]signature.Point
	if err := json.Unmarshal(data, &strokes); err != nil {
		return fmt.Errorf("parse strokes: %w", err)
	}

	for _, stroke := range strokes {
		k.session.Pad().AddStroke(stroke)
	}
	printlnFn(fmt.Sprintf("Loaded %d stroke(s).", len(strokes)))
	return nil
}

func (k *Kiosk) finalize() error {
	bundle, err := k.session.Finalize()
	if err != nil {
		return err
	}
	printlnFn("Document complete:", bundle.DocumentID)
	return nil
}

func (k *Kiosk) exportPDF(ctx context.Context) error {
	bundle, err := k.session.Finalize()
	if err != nil {
		return err
	}
	doc, err := k.builder.DocumentPDF(ctx, bundle)
	if err != nil {
		return err
	}
	dir, err := filex.EnsureDir(k.config.OutputDir)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, doc.Name)
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printlnFn("Saved", path)
	return nil
}

func (k *Kiosk) print(ctx context.Context) error {
	bundle, err := k.session.Finalize()
	if err != nil {
		return err
	}
	html, err := printview.Document(bundle)
	if err != nil {
		return err
	}
	return k.surface.Open(ctx, html)
}
