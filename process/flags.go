package process

import (
	"strings"

	cli "github.com/urfave/cli/v3"

	"stylx/common"
)

func encodingFlag() cli.Flag {
	return &cli.StringFlag{Name: "encoding", Aliases: []string{"enc"},
		Usage: "read definition files in `CHARSET` instead of UTF-8 (see IANA.org for character set names)"}
}

// CompileFlags returns flags of "compile" subcommand. Flags keep parsed state,
// so every command gets its own set.
func CompileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write results to `DIR` instead of configured output directory"},
		&cli.StringFlag{Name: "bundle", Usage: "also write CSS of all units into single `FILE`"},
		&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exits, overwrite files"},
		encodingFlag(),
	}
}

// RenderFlags returns flags of "render" subcommand.
func RenderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "page", Aliases: []string{"p"}, Usage: "deliver styles into existing HTML `FILE` instead of empty document"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write resulting document to `FILE`, if absent - STDOUT"},
		&cli.StringFlag{Name: "delivery",
			Usage: "override configured delivery `MODE` (supported modes: " + strings.Join(common.DeliveryModeNames(), ", ") + ")"},
		encodingFlag(),
	}
}
