package changelog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// HTTPClient is a remote changelog.API, dialed over the plain JSON/HTTP
// RPC surface §6 describes (no protobuf toolchain in this module; see
// objdefs/geomclient for the identical rationale).
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{baseURL: baseURL, hc: hc}
}

type appendRequest struct {
	File  ids.FileId       `json:"file"`
	Batch []wire.ChangeMsg `json:"batch"`
}

func (c *HTTPClient) Append(ctx context.Context, file ids.FileId, batch []wire.ChangeMsg) ([]ids.Offset, error) {
	var offsets []ids.Offset
	err := c.post(ctx, "/append", appendRequest{File: file, Batch: batch}, &offsets)
	return offsets, err
}

type sinceRequest struct {
	File  ids.FileId `json:"file"`
	After ids.Offset `json:"after"`
	Limit int        `json:"limit"`
}

func (c *HTTPClient) Since(ctx context.Context, file ids.FileId, after ids.Offset, limit int) ([]wire.OffsetedChange, error) {
	var out []wire.OffsetedChange
	err := c.post(ctx, "/since", sinceRequest{File: file, After: after, Limit: limit}, &out)
	return out, err
}

func (c *HTTPClient) LatestOffset(ctx context.Context, file ids.FileId) (ids.Offset, error) {
	var out ids.Offset
	err := c.post(ctx, "/latest_offset", map[string]ids.FileId{"file": file}, &out)
	return out, err
}

// Subscribe is intentionally unimplemented on the remote client: per §6,
// log subscription is a Kafka-topic concern (see internal/logfeed), not
// a request/response RPC a remote caller polls.
func (c *HTTPClient) Subscribe(ctx context.Context, file ids.FileId, after ids.Offset) (<-chan wire.OffsetedChange, error) {
	return nil, fmt.Errorf("changelog: remote Subscribe unsupported, consume %s via logfeed instead", file)
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("changelog: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("changelog: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("changelog: do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("changelog: %s returned status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
