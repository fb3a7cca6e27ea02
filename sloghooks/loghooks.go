package sloghooks

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/cachify"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery  uint64
	MissEvery uint64
	// SlowCompute promotes Computed logs to Info when the call took at least
	// this long. 0 = never.
	SlowCompute time.Duration
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
}

var _ cachify.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) CacheHit(fn string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("cachify.hit", "fn", fn)
}

func (h *Hooks) CacheMiss(fn string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("cachify.miss", "fn", fn)
}

func (h *Hooks) Computed(fn string, took time.Duration, err error) {
	if h.l == nil {
		return
	}
	switch {
	case err != nil:
		h.l.Info("cachify.compute_failed",
			"fn", fn,
			"took", took,
			"err", err)
	case h.opts.SlowCompute > 0 && took >= h.opts.SlowCompute:
		h.l.Info("cachify.compute_slow",
			"fn", fn,
			"took", took)
	default:
		h.l.Debug("cachify.computed",
			"fn", fn,
			"took", took)
	}
}

func (h *Hooks) StorageError(fn, op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("cachify.storage_error",
		"fn", fn,
		"op", op,
		"err", err)
}

func (h *Hooks) DecodeFailed(fn string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("cachify.decode_failed",
		"fn", fn,
		"err", err)
}
