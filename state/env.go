// Package state defines shared program state.
package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"stylx/alias"
	"stylx/common"
	"stylx/compiler"
	"stylx/config"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// Styles is the compilation context shared by every unit compiled during
	// program run, so identical declarations are emitted once.
	Styles *alias.Context

	// used by compile subcommand
	Overwrite bool

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
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
	}
}

// Compiler returns compiler working with program wide compilation context,
// creating context on first use.
func (e *LocalEnv) Compiler(opts ...compiler.Option) *compiler.Compiler {
	if e.Styles == nil {
		e.Styles = alias.NewContext(e.Log)
	}
	if e.Cfg != nil {
		opts = append([]compiler.Option{compiler.WithDebugLabels(e.Cfg.Compiler.Development)}, opts...)
	}
	return compiler.New(e.Styles, e.Log, opts...)
}

// UnitIdentity returns stable identity of definitions file according to
// configured identity mode. Paths are made relative to the working directory
// and slash separated so aliases do not depend on where project is checked
// out.
func (e *LocalEnv) UnitIdentity(path string, content []byte) (string, error) {
	mode := common.IdentityModePath
	if e.Cfg != nil {
		mode = e.Cfg.Compiler.Identity
	}

	switch mode {
	case common.IdentityModeContent:
		return string(content), nil
	case common.IdentityModePath:
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("unable to get absolute path for %q: %w", path, err)
		}
		wd, err := os.Getwd()
		if err != nil {
			return filepath.ToSlash(abs), nil
		}
		rel, err := filepath.Rel(wd, abs)
		if err != nil {
			return filepath.ToSlash(abs), nil
		}
		return filepath.ToSlash(rel), nil
	}
	return "", fmt.Errorf("unsupported identity mode %s", mode)
}
