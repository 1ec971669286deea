// Package process implements program subcommands working with definition
// files: compiling them into stylesheets and token maps, and rendering them
// into HTML documents.
package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"stylx/compiler"
	"stylx/state"
)

// expandPatterns returns files matching any of the glob patterns ("**"
// supported). Result is free of duplicates and sorted naturally, so units are
// always compiled in the same order and atom allocation is stable between
// runs.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no definition files match %q", p)
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if seen[m] {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	sort.Sort(natural.StringSlice(files))
	return files, nil
}

// selectEncoding returns decoder for definition files in legacy character
// set. Empty name means UTF-8 and no decoding.
func selectEncoding(name string, log *zap.Logger) encoding.Encoding {
	if len(name) == 0 {
		return nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", name), zap.Error(err))
		return nil
	}
	n, _ := ianaindex.IANA.Name(enc)
	log.Debug("Converting definition files to UTF-8", zap.String("charset", n))
	return enc
}

func readSource(path string, enc encoding.Encoding) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read definitions: %w", err)
	}
	if enc != nil {
		if data, err = enc.NewDecoder().Bytes(data); err != nil {
			return nil, fmt.Errorf("unable to decode definitions: %w", err)
		}
	}
	return data, nil
}

// compiled is a single successfully compiled definition file.
type compiled struct {
	path   string
	unit   *compiler.Unit
	result *compiler.Result
}

var errNoSources = errors.New("no definition files have been specified")

// compileFiles compiles every file as separate unit using shared compilation
// context. Failure of one file does not stop others, all errors are returned
// together.
func compileFiles(ctx context.Context, env *state.LocalEnv, c *compiler.Compiler, files []string, enc encoding.Encoding, log *zap.Logger) (units []compiled, err error) {
	for _, path := range files {
		if er := ctx.Err(); er != nil {
			return units, multierr.Append(err, er)
		}

		u, res, er := compileFile(env, c, path, enc)
		if er != nil {
			log.Error("Unable to compile definitions", zap.String("file", path), zap.Error(er))
			err = multierr.Append(err, fmt.Errorf("%s: %w", path, er))
			continue
		}
		log.Debug("Definitions compiled", zap.String("file", path), zap.String("unit", u.Hash()), zap.Int("keys", len(res.Tokens)))
		units = append(units, compiled{path: path, unit: u, result: res})
	}
	return units, err
}

func compileFile(env *state.LocalEnv, c *compiler.Compiler, path string, enc encoding.Encoding) (*compiler.Unit, *compiler.Result, error) {
	data, err := readSource(path, enc)
	if err != nil {
		return nil, nil, err
	}
	env.Rpt.StoreData("sources/"+filepath.Base(path), data)

	srcs, err := compiler.ParseSource(data)
	if err != nil {
		return nil, nil, err
	}
	identity, err := env.UnitIdentity(path, data)
	if err != nil {
		return nil, nil, err
	}
	u := c.NewUnit(identity)
	res, err := u.Compile(srcs...)
	if err != nil {
		return nil, nil, err
	}
	return u, res, nil
}
