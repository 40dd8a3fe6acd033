// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"slideshow/config"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	start         time.Time
	restoreStdLog func()
	cleanups      []func() error
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
		e.restoreStdLog = nil
	}
}

// AddCleanup registers fn to be called by Cleanup.
func (e *LocalEnv) AddCleanup(fn func() error) {
	e.cleanups = append(e.cleanups, fn)
}

// Cleanup calls registered functions in reverse order. All of them are
// called, errors are accumulated.
func (e *LocalEnv) Cleanup() (err error) {
	for i := len(e.cleanups) - 1; i >= 0; i-- {
		err = multierr.Append(err, e.cleanups[i]())
	}
	e.cleanups = nil
	return err
}
