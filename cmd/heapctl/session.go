package main

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/arenakit/heap/alloc"
	"github.com/joshuapare/arenakit/heap/trace"
	"github.com/joshuapare/arenakit/internal/config"
	"github.com/joshuapare/arenakit/internal/logger"
	"github.com/joshuapare/arenakit/internal/region"
)

// session is one script replayed on its own arena.
type session struct {
	path   string
	script *trace.Script
	region *region.Region
	heap   *alloc.Heap
	result *trace.Result
	err    error // replay error; setup errors are returned by runSession
}

// runSession parses the script at path and replays it on a fresh arena sized
// by cfg. The caller must Close the session.
func runSession(ctx context.Context, path string, cfg *config.Config, validate bool) (*session, error) {
	s, err := trace.ParseFile(path)
	if err != nil {
		return nil, err
	}

	reg, err := region.Acquire(cfg.ArenaSize, cfg.Mmap)
	if err != nil {
		return nil, err
	}
	h, err := alloc.Open(reg.Bytes(), reg.Len(), alloc.WithLogger(logger.L))
	if err != nil {
		_ = reg.Release()
		return nil, errors.Wrapf(err, "%s", path)
	}

	logger.Debug("replay start", "script", s.Name, "ops", len(s.Ops), "arena", h.Len(), "mapped", reg.Mapped())
	res, replayErr := trace.Replay(ctx, s, h, trace.Options{Validate: validate})
	if replayErr != nil {
		logger.Warn("replay stopped", "script", s.Name, "error", replayErr)
	} else {
		logger.Debug("replay done", "script", s.Name, "failures", res.Failures, "peak", res.Peak)
	}

	return &session{path: path, script: s, region: reg, heap: h, result: res, err: replayErr}, nil
}

// Close releases the arena. The heap must not be used afterwards.
func (s *session) Close() error {
	return s.region.Release()
}
