// Package web wires C3, the dependency cache, to the HTTP surface §6
// assigns it (GetAllDeps), with Apply driven out-of-process by
// internal/logfeed consuming OBJECT_TOPIC.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-mizu/mizu"
	"github.com/redis/go-redis/v9"

	"github.com/weaveform/weave/internal/depcache"
	"github.com/weaveform/weave/internal/httpapi"
	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/logfeed"
	"github.com/weaveform/weave/internal/wire"
)

type Config struct {
	Addr      string
	RedisAddr string
	Brokers   []string
	Topic     string
	GroupID   string
}

type Server struct {
	app *mizu.App
	cfg Config
	rdb *redis.Client
	svc *depcache.Service
}

func New(cfg Config) (*Server, error) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	store := depcache.NewRedisStore(rdb)
	svc := depcache.NewService(store)

	srv := &Server{app: mizu.New(), cfg: cfg, rdb: rdb, svc: svc}
	srv.setupRoutes()
	return srv, nil
}

func (s *Server) setupRoutes() {
	s.app.Use(httpapi.RequestID())

	s.app.Post("/get_all_deps", s.handleGetAllDeps)

	s.app.Get("/livez", func(c *mizu.Ctx) error {
		return c.Text(http.StatusOK, "ok")
	})
	s.app.Get("/readyz", func(c *mizu.Ctx) error {
		if err := s.rdb.Ping(c.Context()).Err(); err != nil {
			return c.Text(http.StatusServiceUnavailable, "redis unavailable")
		}
		return c.Text(http.StatusOK, "ok")
	})
}

type getAllDepsRequest struct {
	File   ids.FileId  `json:"file"`
	Offset ids.Offset  `json:"offset"`
	Roots  []ids.RefId `json:"roots"`
}

func (s *Server) handleGetAllDeps(c *mizu.Ctx) error {
	var in getAllDepsRequest
	if err := c.BindJSON(&in, 1<<20); err != nil {
		return httpapi.BadRequest(c, err.Error())
	}
	edges, err := s.svc.GetAllDeps(c.Context(), in.File, in.Offset, in.Roots)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return httpapi.OK(c, edges)
}

func (s *Server) Run(ctx context.Context) error {
	log := slog.Default()
	go func() {
		err := logfeed.Run(ctx, s.cfg.Brokers, s.cfg.Topic, s.cfg.GroupID, log, func(ctx context.Context, file ids.FileId, entry wire.OffsetedChange) error {
			return s.svc.Apply(ctx, file, entry.Offset, entry.Change)
		})
		if err != nil && ctx.Err() == nil {
			log.Error("dependencies: logfeed stopped", "error", err)
		}
	}()

	if err := s.app.Listen(s.cfg.Addr); err != nil {
		return fmt.Errorf("dependencies: listen: %w", err)
	}
	return nil
}

func (s *Server) Close() error {
	return s.rdb.Close()
}
