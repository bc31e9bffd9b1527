package fallback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrUnknownSource = errors.New("fallback source is not configured")

type Loader interface {
	Load(ctx context.Context) (*Dataset, error)
}

// SourceLoader reads the first/last and stops documents from local files or http(s) URLs.
// The stops document is optional.
type SourceLoader struct {
	FirstLast string
	Stops     string

	HTTPClient *http.Client
}

func (l *SourceLoader) Load(ctx context.Context) (*Dataset, error) {
	if l.FirstLast == "" {
		return nil, ErrUnknownSource
	}

	dataset := EmptyDataset()

	firstLastBytes, err := l.read(ctx, l.FirstLast)
	if err != nil {
		return nil, err
	}
	if dataset.FirstLast, err = ParseFirstLast(firstLastBytes); err != nil {
		return nil, err
	}

	if l.Stops != "" {
		stopsBytes, err := l.read(ctx, l.Stops)
		if err == nil {
			dataset.Stops, err = ParseStops(stopsBytes)
		}
		if err != nil {
			log.Warn().Err(err).Str("source", l.Stops).Msg("Continuing without static stops document")
			dataset.Stops = StopsTable{}
		}
	}

	return dataset, nil
}

func (l *SourceLoader) read(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		return data, nil
	}

	client := l.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", source, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
