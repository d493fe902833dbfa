package export

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/docsnap/docsnap/internal/common"
)

// Loader fetches the encoded bytes of a stored photo by its public URL.
type Loader interface {
	Load(ctx context.Context, url string) ([]byte, error)
}

// HTTPLoader loads photo bytes over plain HTTP GET.
type HTTPLoader struct {
	client *http.Client
}

func NewHTTPLoader(client *http.Client) *HTTPLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPLoader{client: client}
}

func (l *HTTPLoader) Load(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrImageLoad, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrImageLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d for %s", common.ErrImageLoad, resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrImageLoad, err)
	}
	return data, nil
}
