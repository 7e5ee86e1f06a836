package undostore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

// HTTPClient is a remote undostore.API, dialed over plain JSON/HTTP.
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

func (c *HTTPClient) BeginUndoEvent(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, error) {
	var out ids.EventId
	err := c.post(ctx, "/begin_undo_event", map[string]any{"file": file, "user": user}, &out)
	return out, err
}

// Record is intentionally unimplemented on the remote client: a remote
// caller never folds committed entries into the undo stacks directly,
// it only calls BeginUndoEvent/UndoLatest/RedoLatest per the §6 RPC
// surface table.
func (c *HTTPClient) Record(ctx context.Context, file ids.FileId, user ids.UserId, offset ids.Offset, change wire.ChangeMsg) error {
	return fmt.Errorf("undostore: remote Record unsupported, this store consumes the log directly")
}

func (c *HTTPClient) UndoLatest(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, []UndoEntry, error) {
	var out struct {
		Event   ids.EventId `json:"event"`
		Entries []UndoEntry `json:"entries"`
	}
	err := c.post(ctx, "/undo_latest", map[string]any{"file": file, "user": user}, &out)
	return out.Event, out.Entries, err
}

func (c *HTTPClient) RedoLatest(ctx context.Context, file ids.FileId, user ids.UserId) (ids.EventId, []UndoEntry, error) {
	var out struct {
		Event   ids.EventId `json:"event"`
		Entries []UndoEntry `json:"entries"`
	}
	err := c.post(ctx, "/redo_latest", map[string]any{"file": file, "user": user}, &out)
	return out.Event, out.Entries, err
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("undostore: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("undostore: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("undostore: do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("undostore: %s returned status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
