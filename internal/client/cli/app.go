package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/docsnap/docsnap/internal/client/api"
	"github.com/docsnap/docsnap/internal/client/config"
	clientmodels "github.com/docsnap/docsnap/internal/client/models"
	"github.com/docsnap/docsnap/internal/collection"
	"github.com/docsnap/docsnap/internal/export"
	"github.com/docsnap/docsnap/internal/filex"
	"github.com/docsnap/docsnap/internal/logging"
	"github.com/docsnap/docsnap/internal/printview"
)

// App is the dashboard application: the live photo mirror plus the REPL
// commands operating on it.
type App struct {
	config  *config.Config
	client  *api.Client
	manager *collection.Manager
	logger  logging.Logger
	reader  *bufio.Reader
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	client, err := api.NewClient(c.ServerURL, logger)
	if err != nil {
		return nil, err
	}

	app := &App{
		config: c,
		client: client,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
	}

	builder := export.NewBuilder(export.NewHTTPLoader(nil), logger)
	surface := printview.NewBrowserSurface(logger)
	app.manager = collection.NewManager(client, builder, surface, app, logger)

	return app, nil
}

// Run loads the collection, attaches the change feed, and hands control to
// the REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	if err := a.manager.Load(ctx); err != nil {
		return err
	}

	feedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := a.client.Subscribe(feedCtx)
	if err != nil {
		// The dashboard still works without live updates.
		a.logger.Warn(ctx, "change feed unavailable", "err", err)
	} else {
		go func() {
			for ev := range events {
				a.manager.Apply(ev)
			}
		}()
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
	return nil
}

func (a *App) status() string {
	return fmt.Sprintf("%d photo(s), %d selected", a.manager.Len(), len(a.manager.Selected()))
}

// Confirm implements collection.Confirmer by asking on stdin.
func (a *App) Confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	line, err := a.reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// resolve maps a REPL argument to a photo id: a 1-based list position or a
// literal id.
func (a *App) resolve(arg string) (string, error) {
	photos := a.manager.Photos()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(photos) {
			return "", fmt.Errorf("no photo number %d", n)
		}
		return photos[n-1].ID, nil
	}
	for _, p := range photos {
		if p.ID == arg {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("no photo %q", arg)
}

func (a *App) List(context.Context) error {
	photos := a.manager.Photos()
	if len(photos) == 0 {
		printlnFn("No photos yet.")
		return nil
	}
	for i, p := range photos {
		mark := " "
		if a.manager.IsSelected(p.ID) {
			mark = "*"
		}
		printlnFn(fmt.Sprintf("%s %3d  %s  %s  %s", mark, i+1,
			p.CreatedAt.Format("2006-01-02 15:04:05"), p.Filename, p.ID))
	}
	return nil
}

func (a *App) Toggle(_ context.Context, arg string) error {
	id, err := a.resolve(arg)
	if err != nil {
		return err
	}
	return a.manager.Toggle(id)
}

func (a *App) SelectAll(context.Context) error {
	a.manager.SelectAll()
	return nil
}

func (a *App) ClearSelection(context.Context) error {
	a.manager.ClearSelection()
	return nil
}

func (a *App) ExportPDF(ctx context.Context) error {
	ids := a.manager.Selected()
	if len(ids) == 0 {
		printlnFn("Nothing selected.")
		return nil
	}
	doc, err := a.manager.ExportPDF(ctx, ids)
	if err != nil {
		return err
	}
	return a.saveDocument(doc)
}

// ExportDocumentPDF builds a verification sheet from exactly two selected
// photos: the first selected becomes the front, the second the back. The
// signature box stays empty, a sheet assembled after the fact has no pad
// raster.
func (a *App) ExportDocumentPDF(ctx context.Context) error {
	ids := a.manager.Selected()
	if len(ids) != 2 {
		printlnFn("Select exactly two photos (front, then back).")
		return nil
	}
	front, err := a.manager.Get(ids[0])
	if err != nil {
		return err
	}
	back, err := a.manager.Get(ids[1])
	if err != nil {
		return err
	}

	now := time.Now()
	bundle := &clientmodels.Bundle{
		Front:      front,
		Back:       back,
		Timestamp:  now,
		DocumentID: fmt.Sprintf("doc_%d", now.UnixMilli()),
	}

	doc, err := a.manager.ExportDocumentPDF(ctx, bundle)
	if err != nil {
		return err
	}
	return a.saveDocument(doc)
}

func (a *App) PrintSelected(ctx context.Context) error {
	ids := a.manager.Selected()
	if len(ids) == 0 {
		printlnFn("Nothing selected.")
		return nil
	}
	return a.manager.PrintGrouped(ctx, ids)
}

func (a *App) PrintOne(ctx context.Context, arg string) error {
	id, err := a.resolve(arg)
	if err != nil {
		return err
	}
	return a.manager.PrintSingle(ctx, id)
}

func (a *App) DeleteOne(ctx context.Context, arg string) error {
	id, err := a.resolve(arg)
	if err != nil {
		return err
	}
	return a.manager.DeleteOne(ctx, id)
}

func (a *App) DeleteSelected(ctx context.Context) error {
	if len(a.manager.Selected()) == 0 {
		printlnFn("Nothing selected.")
		return nil
	}
	return a.manager.DeleteSelected(ctx)
}

func (a *App) saveDocument(doc *export.Document) error {
	dir, err := filex.EnsureDir(a.config.OutputDir)
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
