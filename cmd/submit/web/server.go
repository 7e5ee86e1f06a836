// Package web wires C6, the submit pipeline, to the single HTTP
// endpoint §6 assigns it (submit_changes), dialing C1/C2/C3 remotely
// since each is its own process.
package web

import (
	"fmt"
	"net/http"

	"github.com/go-mizu/mizu"

	"github.com/weaveform/weave/internal/changelog"
	"github.com/weaveform/weave/internal/depcache"
	"github.com/weaveform/weave/internal/httpapi"
	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/objectcache"
	"github.com/weaveform/weave/internal/submitpipe"
	"github.com/weaveform/weave/internal/wire"
)

type Config struct {
	Addr            string
	ChangeLogURL    string
	ObjectsURL      string
	DependenciesURL string
}

type Server struct {
	app *mizu.App
	cfg Config
	svc *submitpipe.Service
}

func New(cfg Config) (*Server, error) {
	log := changelog.NewHTTPClient(cfg.ChangeLogURL, nil)
	objects := objectcache.NewHTTPClient(cfg.ObjectsURL, nil)
	deps := depcache.NewHTTPClient(cfg.DependenciesURL, nil)

	svc := submitpipe.NewService(log, objects, deps)

	srv := &Server{app: mizu.New(), cfg: cfg, svc: svc}
	srv.setupRoutes()
	return srv, nil
}

func (s *Server) setupRoutes() {
	s.app.Use(httpapi.RequestID())

	s.app.Post("/submit_changes", s.handleSubmit)

	s.app.Get("/livez", func(c *mizu.Ctx) error {
		return c.Text(http.StatusOK, "ok")
	})
	s.app.Get("/readyz", func(c *mizu.Ctx) error {
		return c.Text(http.StatusOK, "ok")
	})
}

type submitRequest struct {
	File         ids.FileId       `json:"file"`
	User         ids.UserId       `json:"user"`
	ClientOffset ids.Offset       `json:"client_offset"`
	Batch        []wire.ChangeMsg `json:"batch"`
}

func (s *Server) handleSubmit(c *mizu.Ctx) error {
	var in submitRequest
	if err := c.BindJSON(&in, 8<<20); err != nil {
		return httpapi.BadRequest(c, err.Error())
	}
	offsets, err := s.svc.Submit(c.Context(), in.File, in.User, in.ClientOffset, in.Batch)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return httpapi.OK(c, offsets)
}

func (s *Server) Run() error {
	if err := s.app.Listen(s.cfg.Addr); err != nil {
		return fmt.Errorf("submit: listen: %w", err)
	}
	return nil
}
