// Package httpapi holds the response envelope and apierr-to-status
// mapping shared by every cmd/* service, grounded on blueprints/githome's
// app/web/handler/response.go.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-mizu/mizu"

	"github.com/weaveform/weave/internal/apierr"
)

// Response is the standard API envelope every RPC-style endpoint returns.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK writes a 200 response with data.
func OK(c *mizu.Ctx, data any) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// Created writes a 201 response with data.
func Created(c *mizu.Ctx, data any) error {
	return c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// BadRequest writes a 400 response.
func BadRequest(c *mizu.Ctx, msg string) error {
	return c.JSON(http.StatusBadRequest, Response{Error: msg})
}

// Error maps an apierr sentinel (possibly wrapped) to the status code §7
// assigns it and writes the envelope.
func Error(c *mizu.Ctx, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apierr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apierr.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, apierr.ErrFailedPrecondition):
		status = http.StatusConflict
	case errors.Is(err, apierr.ErrUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, apierr.ErrNoUndoEvent), errors.Is(err, apierr.ErrNoObjInUndoEvent):
		status = http.StatusConflict
	}
	return c.JSON(status, Response{Error: err.Error()})
}
