package depcache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// HTTPClient is a remote depcache.API, dialed over plain JSON/HTTP.
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

// Apply is intentionally unimplemented on the remote client, for the
// same reason as objectcache.HTTPClient.Apply: this cache consumes the
// log directly rather than through a remote RPC.
func (c *HTTPClient) Apply(ctx context.Context, file ids.FileId, offset ids.Offset, change wire.ChangeMsg) error {
	return fmt.Errorf("depcache: remote Apply unsupported, this cache consumes the log directly")
}

type getAllDepsRequest struct {
	File   ids.FileId  `json:"file"`
	Offset ids.Offset  `json:"offset"`
	Roots  []ids.RefId `json:"roots"`
}

func (c *HTTPClient) GetAllDeps(ctx context.Context, file ids.FileId, offset ids.Offset, roots []ids.RefId) ([]ids.Reference, error) {
	var out []ids.Reference
	err := c.post(ctx, "/get_all_deps", getAllDepsRequest{File: file, Offset: offset, Roots: roots}, &out)
	return out, err
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("depcache: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("depcache: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("depcache: do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("depcache: %s returned status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
