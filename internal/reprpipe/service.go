package reprpipe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weaveform/weave/internal/ids"
	"github.com/weaveform/weave/internal/objdefs"
	"github.com/weaveform/weave/internal/wire"
)

type Service struct {
	log     ChangeLog
	publish Publisher
	offsets OffsetStore
	kernel  objdefs.GeomKernel
	logger  *slog.Logger
}

func NewService(log ChangeLog, publish Publisher, offsets OffsetStore, kernel objdefs.GeomKernel, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{log: log, publish: publish, offsets: offsets, kernel: kernel, logger: logger}
}

// Run drives one file's representation stream from after until ctx is
// cancelled. Each committed entry is turned into one UpdateChangeMsg;
// failures are logged and skipped rather than aborting the stream, since
// §4.8 treats this pipeline as best-effort and downstream-of-record.
func (s *Service) Run(ctx context.Context, file ids.FileId, after ids.Offset) error {
	ch, err := s.log.Subscribe(ctx, file, after)
	if err != nil {
		return fmt.Errorf("reprpipe: subscribe: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry, ok := <-ch:
			if !ok {
				return nil
			}
			s.HandleEntry(ctx, file, entry)
		}
	}
}

// HandleEntry computes and publishes the representation for one
// committed entry, deduplicating against OffsetStore. It is also the
// entry point a logfeed-driven consumer calls directly, without going
// through Run/ChangeLog.Subscribe, when it already receives entries
// demultiplexed by file.
func (s *Service) HandleEntry(ctx context.Context, file ids.FileId, entry wire.OffsetedChange) {
	obj := entry.Change.ObjId()

	if last, found, err := s.offsets.LastPublished(ctx, file, obj); err == nil && found && last >= entry.Offset {
		return
	}

	update, err := s.represent(ctx, entry.Change)
	if err != nil {
		s.logger.Error("reprpipe: compute representation failed", "file", file.String(), "obj", obj.String(), "offset", entry.Offset, "error", err)
		return
	}

	if err := s.publish.Publish(ctx, file, update); err != nil {
		s.logger.Error("reprpipe: publish failed", "file", file.String(), "obj", obj.String(), "offset", entry.Offset, "error", err)
		return
	}

	if err := s.offsets.SetLastPublished(ctx, file, obj, entry.Offset); err != nil {
		s.logger.Warn("reprpipe: dedup record not persisted", "file", file.String(), "obj", obj.String(), "error", err)
	}
}

func (s *Service) represent(ctx context.Context, change wire.ChangeMsg) (wire.UpdateChangeMsg, error) {
	obj := change.ObjId()
	if change.Kind == wire.KindDelete {
		return wire.UpdateChangeMsg{
			User:   change.User,
			ObjID:  obj,
			Output: wire.UpdateOutput{Kind: wire.OutputDelete},
		}, nil
	}
	if change.Object == nil {
		return wire.UpdateChangeMsg{}, fmt.Errorf("reprpipe: %s change missing object", change.Kind)
	}
	t, err := objdefs.Decode(change.Object.ObjData)
	if err != nil {
		return wire.UpdateChangeMsg{}, fmt.Errorf("reprpipe: decode %s: %w", obj, err)
	}
	output, err := t.Representation(ctx, s.kernel)
	if err != nil {
		return wire.UpdateChangeMsg{}, fmt.Errorf("reprpipe: represent %s: %w", obj, err)
	}
	return wire.UpdateChangeMsg{User: change.User, ObjID: obj, Output: output}, nil
}
