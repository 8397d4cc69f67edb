// SPDX-License-Identifier: MIT

package jackknife

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/katalvlaran/varcomp/estimate"
)

// DefaultBlockSize is ordinary leave-one-out.
const DefaultBlockSize = 1

const panicWorkers = "jackknife: WithWorkers: n must be > 0"

// Option configures a jackknife run.
type Option func(*Options)

// Options is the resolved configuration of Run.
type Options struct {
	blockSize int
	workers   int
	solve     []estimate.Option
	logger    *zap.Logger
}

// WithBlockSize sets the deletion window b. It is validated against N by Run
// (core.ErrBadBlockSize) since N is unknown here.
func WithBlockSize(b int) Option {
	return func(o *Options) { o.blockSize = b }
}

// WithWorkers bounds the number of concurrent replicate fits.
// Default: runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	if n <= 0 {
		panic(panicWorkers)
	}

	return func(o *Options) { o.workers = n }
}

// WithSolveOptions forwards options to every replicate's estimate.Solve.
func WithSolveOptions(opts ...estimate.Option) Option {
	return func(o *Options) { o.solve = append(o.solve, opts...) }
}

// WithLogger routes progress logs to l. nil restores the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l == nil {
			l = zap.NewNop()
		}
		o.logger = l
	}
}

func gatherOptions(user ...Option) Options {
	o := Options{
		blockSize: DefaultBlockSize,
		workers:   runtime.GOMAXPROCS(0),
		logger:    zap.NewNop(),
	}
	for _, set := range user {
		set(&o)
	}

	return o
}
