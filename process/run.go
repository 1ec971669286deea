package process

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"stylx/compiler"
	"stylx/config"
	"stylx/state"
	"stylx/style"
)

// Compile is "compile" subcommand: every definition file becomes stylesheet
// and token map files.
func Compile(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("compile")

	patterns := cmd.Args().Slice()
	if len(patterns) == 0 {
		return errNoSources
	}

	dst := cmd.String("out")
	if len(dst) == 0 {
		dst = env.Cfg.Output.Directory
	}
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	env.Overwrite = cmd.Bool("overwrite")

	files, err := expandPatterns(patterns)
	if err != nil {
		return err
	}
	enc := selectEncoding(cmd.String("encoding"), log)

	log.Info("Processing starting", zap.Int("files", len(files)), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	units, err := compileFiles(ctx, env, env.Compiler(), files, enc, log)
	for _, u := range units {
		if er := writeUnit(u, dst, env, log); er != nil {
			err = multierr.Append(err, er)
		}
	}

	if bundle := cmd.String("bundle"); len(bundle) > 0 && len(units) > 0 {
		var sb strings.Builder
		for _, u := range units {
			sb.WriteString(u.unit.CSS())
		}
		if er := writeFile(bundle, []byte(sb.String()), env.Overwrite); er != nil {
			err = multierr.Append(err, er)
		} else {
			env.Rpt.Store("output/"+filepath.Base(bundle), bundle)
			log.Info("Bundle written", zap.String("file", bundle), zap.Int("units", len(units)))
		}
	}
	return err
}

func writeUnit(u compiled, dst string, env *state.LocalEnv, log *zap.Logger) error {
	cssPath, err := buildOutputPath(config.NameTemplateFieldName, env.Cfg.Output.NameTemplate, u.path, u.unit.Hash(), dst, env)
	if err != nil {
		return err
	}
	mapPath, err := buildOutputPath(config.MapNameTemplateFieldName, env.Cfg.Output.MapNameTemplate, u.path, u.unit.Hash(), dst, env)
	if err != nil {
		return err
	}
	if cssPath == mapPath {
		return fmt.Errorf("%s: stylesheet and token map have the same name %s", u.path, cssPath)
	}

	data, err := TokenMap(u.result)
	if err != nil {
		return fmt.Errorf("%s: %w", u.path, err)
	}
	if err := writeFile(cssPath, []byte(u.result.CSS), env.Overwrite); err != nil {
		return err
	}
	if err := writeFile(mapPath, data, env.Overwrite); err != nil {
		return err
	}
	for _, p := range []string{cssPath, mapPath} {
		if rel, err := filepath.Rel(dst, p); err == nil {
			env.Rpt.Store("output/"+filepath.ToSlash(rel), p)
		}
	}

	log.Info("Unit written", zap.String("source", u.path), zap.String("css", cssPath), zap.String("map", mapPath))
	return nil
}

// TokenMap encodes logical key to token mapping of compilation result as YAML
// in declaration order.
func TokenMap(res *compiler.Result) ([]byte, error) {
	m := &style.Map{}
	for _, t := range res.Tokens {
		m.Add(t.Key, t.Value)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("unable to encode token map: %w", err)
	}
	return data, nil
}

var errDestinationExists = errors.New("destination already exists")

func writeFile(path string, data []byte, overwrite bool) error {
	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			return fmt.Errorf("%w: %s", errDestinationExists, path)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to check destination: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}
