// Package geomclient implements objdefs.GeomKernel against GEOM_URL over
// plain HTTP/JSON. original_source's geom_kernel.rs dials this service
// with a generated gRPC/protobuf stub; this module has no protobuf
// toolchain in its dependency set (see DESIGN.md), so the same
// single-RPC contract is carried over net/http instead.
package geomclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/weaveform/weave/internal/wire"
)

type Client struct {
	baseURL string
	hc      *http.Client
}

func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: baseURL, hc: hc}
}

type makePrismRequest struct {
	First  wire.Point3 `json:"first"`
	Second wire.Point3 `json:"second"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
}

func (c *Client) MakePrism(ctx context.Context, first, second wire.Point3, width, height float64) (wire.MeshData, error) {
	body, err := json.Marshal(makePrismRequest{First: first, Second: second, Width: width, Height: height})
	if err != nil {
		return wire.MeshData{}, fmt.Errorf("geomclient: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/make_prism", bytes.NewReader(body))
	if err != nil {
		return wire.MeshData{}, fmt.Errorf("geomclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return wire.MeshData{}, fmt.Errorf("geomclient: make_prism: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return wire.MeshData{}, fmt.Errorf("geomclient: make_prism: status %s", resp.Status)
	}

	var mesh wire.MeshData
	if err := json.NewDecoder(resp.Body).Decode(&mesh); err != nil {
		return wire.MeshData{}, fmt.Errorf("geomclient: decode response: %w", err)
	}
	return mesh, nil
}
