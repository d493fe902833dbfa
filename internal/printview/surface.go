package printview

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/docsnap/docsnap/internal/common"
	"github.com/docsnap/docsnap/internal/logging"
)

// Surface opens a rendered print page. Implementations that cannot open a
// window wrap ErrPopupBlocked so callers can tell the user to allow popups.
type Surface interface {
	Open(ctx context.Context, html string) error
}

// BrowserSurface writes the page to a temp file and launches the OS default
// browser on it. The file is left behind for the browser to read; the OS
// temp cleaner collects it eventually.
type BrowserSurface struct {
	logger logging.Logger

	// launch is swapped out in tests.
	launch func(ctx context.Context, path string) error
}

func NewBrowserSurface(logger logging.Logger) *BrowserSurface {
	return &BrowserSurface{logger: logger, launch: openInBrowser}
}

func (s *BrowserSurface) Open(ctx context.Context, html string) error {
	f, err := os.CreateTemp("", "docsnap_print_*.html")
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPopupBlocked, err)
	}

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("%w: %v", common.ErrPopupBlocked, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("%w: %v", common.ErrPopupBlocked, err)
	}

	if err := s.launch(ctx, f.Name()); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("%w: %v", common.ErrPopupBlocked, err)
	}

	s.logger.Info(ctx, "print view opened", "path", f.Name())
	return nil
}

func openInBrowser(ctx context.Context, path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", path)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", path)
	}
	return cmd.Start()
}
