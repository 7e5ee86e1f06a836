package objectcache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// HTTPClient is a remote objectcache.API, dialed over plain JSON/HTTP.
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

// Apply is intentionally unimplemented on the remote client: a remote
// caller never drives C2's log consumption directly, it only reads via
// GetObjects/LatestOffset/LatestAliveIDs per the §6 RPC surface table.
func (c *HTTPClient) Apply(ctx context.Context, file ids.FileId, offset ids.Offset, change wire.ChangeMsg) error {
	return fmt.Errorf("objectcache: remote Apply unsupported, this cache consumes the log directly")
}

type getObjectsRequest struct {
	File    ids.FileId `json:"file"`
	Queries []Query    `json:"queries"`
}

func (c *HTTPClient) GetObjects(ctx context.Context, file ids.FileId, queries []Query) ([]*wire.ChangeMsg, error) {
	var out []*wire.ChangeMsg
	err := c.post(ctx, "/get_objects", getObjectsRequest{File: file, Queries: queries}, &out)
	return out, err
}

func (c *HTTPClient) LatestOffset(ctx context.Context, file ids.FileId) (ids.Offset, error) {
	var out ids.Offset
	err := c.post(ctx, "/latest_offset", map[string]ids.FileId{"file": file}, &out)
	return out, err
}

func (c *HTTPClient) LatestAliveIDs(ctx context.Context, file ids.FileId) (<-chan ids.ObjId, error) {
	var list []ids.ObjId
	if err := c.post(ctx, "/latest_alive_ids", map[string]ids.FileId{"file": file}, &list); err != nil {
		return nil, err
	}
	out := make(chan ids.ObjId, len(list))
	for _, id := range list {
		out <- id
	}
	close(out)
	return out, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("objectcache: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("objectcache: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("objectcache: do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("objectcache: %s returned status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
