// Package web wires C1, the change log, to the HTTP surface §6 assigns
// it: Append/Since/LatestOffset over JSON, plus a KafkaBus publishing
// every committed entry for downstream consumers (C2/C3/C4/C8) to read
// via internal/logfeed, grounded on blueprints/githome/app/web/server.go.
package web

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/go-mizu/mizu"

	"github.com/weaveform/weave/internal/changelog"
	"github.com/weaveform/weave/internal/httpapi"
	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/wire"
)

type Config struct {
	Addr      string
	StorePath string
	Brokers   []string
	Topic     string
	GroupID   string
}

type Server struct {
	app *mizu.App
	cfg Config
	db  *sql.DB
	bus *changelog.KafkaBus
	svc *changelog.Service
}

func New(cfg Config) (*Server, error) {
	db, err := sql.Open("duckdb", cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("changelog: open database: %w", err)
	}

	store := changelog.NewDuckStore(db)
	if err := store.Ensure(context.Background()); err != nil {
		return nil, fmt.Errorf("changelog: ensure schema: %w", err)
	}

	bus, err := changelog.NewKafkaBus(cfg.Brokers, cfg.Topic, cfg.GroupID, nil)
	if err != nil {
		return nil, fmt.Errorf("changelog: dial kafka: %w", err)
	}

	svc := changelog.NewService(store, bus)

	srv := &Server{app: mizu.New(), cfg: cfg, db: db, bus: bus, svc: svc}
	srv.setupRoutes()
	return srv, nil
}

func (s *Server) setupRoutes() {
	s.app.Use(httpapi.RequestID())

	s.app.Post("/append", s.handleAppend)
	s.app.Post("/since", s.handleSince)
	s.app.Post("/latest_offset", s.handleLatestOffset)

	s.app.Get("/livez", func(c *mizu.Ctx) error {
		return c.Text(http.StatusOK, "ok")
	})
	s.app.Get("/readyz", func(c *mizu.Ctx) error {
		if err := s.db.Ping(); err != nil {
			return c.Text(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.Text(http.StatusOK, "ok")
	})
}

type appendRequest struct {
	File  ids.FileId       `json:"file"`
	Batch []wire.ChangeMsg `json:"batch"`
}

func (s *Server) handleAppend(c *mizu.Ctx) error {
	var in appendRequest
	if err := c.BindJSON(&in, 4<<20); err != nil {
		return httpapi.BadRequest(c, err.Error())
	}
	offsets, err := s.svc.Append(c.Context(), in.File, in.Batch)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return httpapi.OK(c, offsets)
}

type sinceRequest struct {
	File  ids.FileId `json:"file"`
	After ids.Offset `json:"after"`
	Limit int        `json:"limit"`
}

func (s *Server) handleSince(c *mizu.Ctx) error {
	var in sinceRequest
	if err := c.BindJSON(&in, 1<<20); err != nil {
		return httpapi.BadRequest(c, err.Error())
	}
	entries, err := s.svc.Since(c.Context(), in.File, in.After, in.Limit)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return httpapi.OK(c, entries)
}

func (s *Server) handleLatestOffset(c *mizu.Ctx) error {
	var in struct {
		File ids.FileId `json:"file"`
	}
	if err := c.BindJSON(&in, 1<<16); err != nil {
		return httpapi.BadRequest(c, err.Error())
	}
	offset, err := s.svc.LatestOffset(c.Context(), in.File)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return httpapi.OK(c, offset)
}

// Run starts the HTTP listener and, concurrently, the Kafka consumer
// loop that drives the bus's in-process fan-out to Subscribe callers.
func (s *Server) Run(ctx context.Context) error {
	errs := make(chan error, 1)
	go func() { errs <- s.bus.Run(ctx) }()
	go func() {
		<-ctx.Done()
		s.bus.Close()
	}()

	if err := s.app.Listen(s.cfg.Addr); err != nil {
		return fmt.Errorf("changelog: listen: %w", err)
	}
	return nil
}

func (s *Server) Close() error {
	return s.db.Close()
}
