// Package web wires C2, the object cache, to the HTTP surface §6
// assigns it (GetObjects/LatestOffset/LatestAliveIDs), with Apply driven
// out-of-process by internal/logfeed consuming OBJECT_TOPIC rather than
// by a direct caller.
package web

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-mizu/mizu"

	"github.com/weaveform/weave/internal/httpapi"
	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/logfeed"
	"github.com/weaveform/weave/internal/objectcache"
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
	svc *objectcache.Service
}

func New(cfg Config) (*Server, error) {
	db, err := sql.Open("duckdb", cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("objects: open database: %w", err)
	}

	store := objectcache.NewDuckStore(db)
	if err := store.Ensure(context.Background()); err != nil {
		return nil, fmt.Errorf("objects: ensure schema: %w", err)
	}

	svc := objectcache.NewService(store)

	srv := &Server{app: mizu.New(), cfg: cfg, db: db, svc: svc}
	srv.setupRoutes()
	return srv, nil
}

func (s *Server) setupRoutes() {
	s.app.Use(httpapi.RequestID())

	s.app.Post("/get_objects", s.handleGetObjects)
	s.app.Post("/latest_offset", s.handleLatestOffset)
	s.app.Post("/latest_alive_ids", s.handleLatestAliveIDs)

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

type getObjectsRequest struct {
	File    ids.FileId          `json:"file"`
	Queries []objectcache.Query `json:"queries"`
}

func (s *Server) handleGetObjects(c *mizu.Ctx) error {
	var in getObjectsRequest
	if err := c.BindJSON(&in, 4<<20); err != nil {
		return httpapi.BadRequest(c, err.Error())
	}
	out, err := s.svc.GetObjects(c.Context(), in.File, in.Queries)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return httpapi.OK(c, out)
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

func (s *Server) handleLatestAliveIDs(c *mizu.Ctx) error {
	var in struct {
		File ids.FileId `json:"file"`
	}
	if err := c.BindJSON(&in, 1<<16); err != nil {
		return httpapi.BadRequest(c, err.Error())
	}
	ch, err := s.svc.LatestAliveIDs(c.Context(), in.File)
	if err != nil {
		return httpapi.Error(c, err)
	}
	var out []ids.ObjId
	for id := range ch {
		out = append(out, id)
	}
	return httpapi.OK(c, out)
}

// Run starts the HTTP listener and, concurrently, the logfeed consumer
// loop that folds every committed change log entry into the cache.
func (s *Server) Run(ctx context.Context) error {
	log := slog.Default()
	go func() {
		err := logfeed.Run(ctx, s.cfg.Brokers, s.cfg.Topic, s.cfg.GroupID, log, func(ctx context.Context, file ids.FileId, entry wire.OffsetedChange) error {
			return s.svc.Apply(ctx, file, entry.Offset, entry.Change)
		})
		if err != nil && ctx.Err() == nil {
			log.Error("objects: logfeed stopped", "error", err)
		}
	}()

	if err := s.app.Listen(s.cfg.Addr); err != nil {
		return fmt.Errorf("objects: listen: %w", err)
	}
	return nil
}

func (s *Server) Close() error {
	return s.db.Close()
}
