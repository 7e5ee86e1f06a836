// Package web wires C4 (the undo store) and C7 (the undo/redo engine)
// to the HTTP surface §6 assigns them: begin_undo_event/undo_latest/
// redo_latest. Record is driven out-of-process by internal/logfeed
// consuming OBJECT_TOPIC; ObjectHistory reads reach C2 over its own
// HTTP client since this is a separate process from the object cache.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-mizu/mizu"
	"github.com/redis/go-redis/v9"

	"github.com/weaveform/weave/internal/httpapi"
	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/logfeed"
	"github.com/weaveform/weave/internal/objectcache"
	"github.com/weaveform/weave/internal/undoengine"
	"github.com/weaveform/weave/internal/undostore"
	"github.com/weaveform/weave/internal/wire"
)

type Config struct {
	Addr       string
	RedisAddr  string
	ObjectsURL string
	Brokers    []string
	Topic      string
	GroupID    string
}

type Server struct {
	app    *mizu.App
	cfg    Config
	rdb    *redis.Client
	store  *undostore.Service
	engine *undoengine.Service
}

func New(cfg Config) (*Server, error) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	store := undostore.NewService(undostore.NewRedisStore(rdb))
	history := objectcache.NewHTTPClient(cfg.ObjectsURL, nil)
	engine := undoengine.NewService(store, history)

	srv := &Server{app: mizu.New(), cfg: cfg, rdb: rdb, store: store, engine: engine}
	srv.setupRoutes()
	return srv, nil
}

func (s *Server) setupRoutes() {
	s.app.Use(httpapi.RequestID())

	s.app.Post("/begin_undo_event", s.handleBegin)
	s.app.Post("/undo_latest", s.handleUndo)
	s.app.Post("/redo_latest", s.handleRedo)

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

type fileUserRequest struct {
	File ids.FileId `json:"file"`
	User ids.UserId `json:"user"`
}

func (s *Server) handleBegin(c *mizu.Ctx) error {
	var in fileUserRequest
	if err := c.BindJSON(&in, 1<<16); err != nil {
		return httpapi.BadRequest(c, err.Error())
	}
	event, err := s.store.BeginUndoEvent(c.Context(), in.File, in.User)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return httpapi.OK(c, event)
}

type undoRedoResponse struct {
	Event ids.EventId      `json:"event"`
	Batch []wire.ChangeMsg `json:"batch"`
}

func (s *Server) handleUndo(c *mizu.Ctx) error {
	var in fileUserRequest
	if err := c.BindJSON(&in, 1<<16); err != nil {
		return httpapi.BadRequest(c, err.Error())
	}
	event, batch, err := s.engine.Undo(c.Context(), in.File, in.User)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return httpapi.OK(c, undoRedoResponse{Event: event, Batch: batch})
}

func (s *Server) handleRedo(c *mizu.Ctx) error {
	var in fileUserRequest
	if err := c.BindJSON(&in, 1<<16); err != nil {
		return httpapi.BadRequest(c, err.Error())
	}
	event, batch, err := s.engine.Redo(c.Context(), in.File, in.User)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return httpapi.OK(c, undoRedoResponse{Event: event, Batch: batch})
}

// Run starts the HTTP listener and, concurrently, the logfeed consumer
// loop that folds every committed change log entry into the stacks.
func (s *Server) Run(ctx context.Context) error {
	log := slog.Default()
	go func() {
		err := logfeed.Run(ctx, s.cfg.Brokers, s.cfg.Topic, s.cfg.GroupID, log, func(ctx context.Context, file ids.FileId, entry wire.OffsetedChange) error {
			return s.store.Record(ctx, file, entry.Change.User, entry.Offset, entry.Change)
		})
		if err != nil && ctx.Err() == nil {
			log.Error("undo: logfeed stopped", "error", err)
		}
	}()

	if err := s.app.Listen(s.cfg.Addr); err != nil {
		return fmt.Errorf("undo: listen: %w", err)
	}
	return nil
}

func (s *Server) Close() error {
	return s.rdb.Close()
}
