package prim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/nextdepartures/pkg/siri_sm"
	"github.com/travigo/nextdepartures/pkg/util"
)

const DefaultBaseURL = "https://prim.iledefrance-mobilites.fr/marketplace"

var ErrUnexpectedStatus = errors.New("unexpected upstream status")

// Client talks to the PRIM marketplace, optionally through a proxy that takes the URL-encoded
// target appended to its own URL
type Client struct {
	BaseURL     string
	ProxyPrefix string
	APIKey      string

	HTTPClient *http.Client
}

func NewClient(baseURL string, proxyPrefix string, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		ProxyPrefix: proxyPrefix,
		APIKey:      apiKey,
		HTTPClient:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) StopMonitoring(ctx context.Context, monitoringRef string) (*siri_sm.SiriSM, error) {
	var document siri_sm.SiriSM
	if err := c.getJSON(ctx, "/stop-monitoring", url.Values{"MonitoringRef": {monitoringRef}}, &document); err != nil {
		return nil, err
	}
	return &document, nil
}

func (c *Client) GeneralMessage(ctx context.Context, lineRef string) (*siri_sm.SiriSM, error) {
	var document siri_sm.SiriSM
	if err := c.getJSON(ctx, "/general-message", url.Values{"LineRef": {lineRef}}, &document); err != nil {
		return nil, err
	}
	return &document, nil
}

func (c *Client) JourneyPattern(ctx context.Context, journeyPatternRef string) (*JourneyPattern, error) {
	var journeyPattern JourneyPattern
	if err := c.getJSON(ctx, "/journey-patterns/"+url.PathEscape(journeyPatternRef), nil, &journeyPattern); err != nil {
		return nil, err
	}
	return &journeyPattern, nil
}

func (c *Client) requestURL(path string, query url.Values) string {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	if c.ProxyPrefix == "" {
		return target
	}
	return c.ProxyPrefix + url.QueryEscape(target)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, destination any) error {
	requestURL := c.requestURL(path, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("apikey", c.APIKey)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	startTime := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(startTime)).
		Msg("PRIM request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w %d from %s: %s", ErrUnexpectedStatus, resp.StatusCode, path, util.TrimString(string(body), 200))
	}

	if err := json.Unmarshal(body, destination); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	return nil
}
