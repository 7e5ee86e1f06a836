// Package web wires C8, the representation pipeline, to the HTTP
// surface §6 assigns it (get_object_representations), driving
// computation out-of-process by internal/logfeed consuming
// OBJECT_TOPIC and publishing onto REPR_TOPIC, with a Redis-backed
// RepCache serving lookups independent of whether a caller was
// listening live when a representation was computed.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-mizu/mizu"
	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/weaveform/weave/internal/httpapi"
	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/logfeed"
	"github.com/weaveform/weave/internal/objdefs/geomclient"
	"github.com/weaveform/weave/internal/reprpipe"
	"github.com/weaveform/weave/internal/wire"
)

type Config struct {
	Addr      string
	RedisAddr string
	GeomURL   string
	Brokers   []string
	Topic     string
	ReprTopic string
	GroupID   string
}

type Server struct {
	app   *mizu.App
	cfg   Config
	rdb   *redis.Client
	kafka *kgo.Client
	svc   *reprpipe.Service
	cache reprpipe.RepCache
}

func New(cfg Config) (*Server, error) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	client, err := kgo.NewClient(kgo.SeedBrokers(cfg.Brokers...))
	if err != nil {
		return nil, fmt.Errorf("representations: dial kafka producer: %w", err)
	}

	cache := reprpipe.NewRedisRepCache(rdb)
	publish := reprpipe.NewCachingPublisher(reprpipe.NewKafkaPublisher(client, cfg.ReprTopic), cache)
	offsets := reprpipe.NewRedisOffsetStore(rdb)
	kernel := geomclient.New(cfg.GeomURL, nil)

	svc := reprpipe.NewService(nil, publish, offsets, kernel, nil)

	srv := &Server{app: mizu.New(), cfg: cfg, rdb: rdb, kafka: client, svc: svc, cache: cache}
	srv.setupRoutes()
	return srv, nil
}

func (s *Server) setupRoutes() {
	s.app.Use(httpapi.RequestID())

	s.app.Post("/get_object_representations", s.handleGet)

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

type getRepsRequest struct {
	File ids.FileId  `json:"file"`
	Objs []ids.ObjId `json:"objs"`
}

func (s *Server) handleGet(c *mizu.Ctx) error {
	var in getRepsRequest
	if err := c.BindJSON(&in, 1<<20); err != nil {
		return httpapi.BadRequest(c, err.Error())
	}
	out, err := s.cache.Get(c.Context(), in.File, in.Objs)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return httpapi.OK(c, out)
}

// Run starts the HTTP listener and, concurrently, the logfeed consumer
// loop that computes and publishes a representation for every committed
// change log entry across every file.
func (s *Server) Run(ctx context.Context) error {
	log := slog.Default()
	go func() {
		err := logfeed.Run(ctx, s.cfg.Brokers, s.cfg.Topic, s.cfg.GroupID, log, func(ctx context.Context, file ids.FileId, entry wire.OffsetedChange) error {
			s.svc.HandleEntry(ctx, file, entry)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			log.Error("representations: logfeed stopped", "error", err)
		}
	}()

	if err := s.app.Listen(s.cfg.Addr); err != nil {
		return fmt.Errorf("representations: listen: %w", err)
	}
	return nil
}

func (s *Server) Close() error {
	s.kafka.Close()
	return s.rdb.Close()
}
