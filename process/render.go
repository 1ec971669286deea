package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"stylx/common"
	"stylx/document"
	"stylx/inject"
	"stylx/state"
)

// Render is "render" subcommand: compiled definition files are delivered into
// HTML document through injection runtime and the document is written out.
func Render(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	patterns := cmd.Args().Slice()
	if len(patterns) == 0 {
		return errNoSources
	}

	mode := env.Cfg.Compiler.Delivery
	if cmd.IsSet("delivery") {
		if mode, err = common.ParseDeliveryMode(cmd.String("delivery")); err != nil {
			return err
		}
	}

	doc, err := openPage(cmd.String("page"), env.Log)
	if err != nil {
		return err
	}

	files, err := expandPatterns(patterns)
	if err != nil {
		return err
	}
	enc := selectEncoding(cmd.String("encoding"), log)

	log.Info("Rendering starting", zap.Int("files", len(files)), zap.Stringer("delivery", mode))
	defer func(start time.Time) {
		log.Info("Rendering completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	units, err := compileFiles(ctx, env, env.Compiler(), files, enc, log)
	if err != nil {
		// partially styled page is worse than none
		return err
	}

	rt := inject.New(doc, env.Log)
	for _, u := range units {
		if err := u.unit.Deliver(rt, mode); err != nil {
			return fmt.Errorf("%s: unable to deliver styles: %w", u.path, err)
		}
	}
	if mode == common.DeliveryModeBatch {
		if err := rt.Flush(); err != nil {
			return fmt.Errorf("unable to deliver styles: %w", err)
		}
	}

	return writeDocument(doc, cmd.String("out"), env)
}

func openPage(page string, log *zap.Logger) (*document.Document, error) {
	if len(page) == 0 {
		return document.New(log), nil
	}
	f, err := os.Open(page)
	if err != nil {
		return nil, fmt.Errorf("unable to open page: %w", err)
	}
	defer f.Close()
	return document.Parse(f, log)
}

func writeDocument(doc *document.Document, fname string, env *state.LocalEnv) error {
	var out io.Writer = os.Stdout
	if len(fname) > 0 {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		out = f
		env.Rpt.Store("output/"+filepath.Base(fname), fname)
	}
	if err := doc.Render(out); err != nil {
		return fmt.Errorf("unable to render document: %w", err)
	}
	return nil
}
