// Package store provides the HTTP client for the sheet-bridge service
// that fronts the operational spreadsheet, implementing the core store
// contract.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	corestore "github.com/railyard-ops/railyard/core/store"
	"github.com/railyard-ops/railyard/infra/logger"
)

// Config defines the connection parameters for the sheet bridge.
type Config struct {
	BaseURL        string `json:"base_url"`
	APIKey         string `json:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 15
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	return nil
}

// envelope is the bridge's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// HTTPStore talks to the sheet bridge over REST. Tables live under
// {base}/data/{table}; rows are header-keyed JSON objects.
type HTTPStore struct {
	base   string
	apiKey string
	client *http.Client
	log    logger.Logger
}

// NewHTTPStore creates a store client from the config.
func NewHTTPStore(cfg Config, log logger.Logger) (*HTTPStore, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("store config: %w", err)
	}
	if log == nil {
		log = logger.New("http-store")
	}
	return &HTTPStore{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:    log,
	}, nil
}

func (s *HTTPStore) do(ctx context.Context, method, url string, body any) (json.RawMessage, error) {
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s %s", corestore.ErrTableNotFound, method, url)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response from %s: %w", url, err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("bridge %s %s: %s", method, url, msg)
	}
	return env.Data, nil
}

// ReadTable fetches all rows of the table. Non-string cells are
// stringified so downstream parsing sees the same shapes a sheet
// export produces.
func (s *HTTPStore) ReadTable(ctx context.Context, table string) ([]corestore.Row, error) {
	data, err := s.do(ctx, http.MethodGet, s.base+"/data/"+table, nil)
	if err != nil {
		return nil, err
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode rows of %s: %w", table, err)
	}
	rows := make([]corestore.Row, 0, len(raw))
	for _, m := range raw {
		row := make(corestore.Row, len(m))
		for k, v := range m {
			row[k] = cellString(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AppendRows appends rows to the end of the table.
func (s *HTTPStore) AppendRows(ctx context.Context, table string, rows []corestore.Row) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := s.do(ctx, http.MethodPost, s.base+"/data/"+table, map[string]any{"rows": rows})
	return err
}

// UpdateRow replaces the data row at the given index.
func (s *HTTPStore) UpdateRow(ctx context.Context, table string, index int, row corestore.Row) error {
	url := fmt.Sprintf("%s/data/%s/%d", s.base, table, index)
	_, err := s.do(ctx, http.MethodPut, url, map[string]any{"row": row})
	return err
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// Avoid the exponent form for integral cells.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(t)
	}
}

var _ corestore.Store = (*HTTPStore)(nil)
