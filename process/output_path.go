package process

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"

	"stylx/config"
	"stylx/state"
)

// buildOutputPath returns path of file produced for source src expanding
// user-defined name template. Template may contain subdirectories, every path
// segment is cleaned up and if requested transliterated.
func buildOutputPath(name config.TemplateFieldName, field, src, hash, dst string, env *state.LocalEnv) (string, error) {
	expanded, err := expandTemplate(name, field, newValues(name, src, hash))
	if err != nil {
		return "", fmt.Errorf("unable to prepare output file name: %w", err)
	}
	segments := splitAndCleanPath(filepath.FromSlash(strings.TrimSpace(expanded)))
	if len(segments) == 0 {
		return "", fmt.Errorf("template %s expanded to empty file name for %s", name, src)
	}

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, dst)
	for i, segment := range segments {
		parts = append(parts, cleanPathSegment(segment, i == len(segments)-1, env))
	}
	return filepath.Join(parts...), nil
}

func splitAndCleanPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}
	return segments
}

// cleanPathSegment keeps file extension intact when transliterating, slug
// would fold the dot otherwise.
func cleanPathSegment(segment string, file bool, env *state.LocalEnv) string {
	if env.Cfg != nil && env.Cfg.Output.Transliterate {
		ext := ""
		if file {
			ext = multiExt(segment)
			segment = strings.TrimSuffix(segment, ext)
		}
		segment = slug.Make(segment) + ext
	}
	return cleanFileName(segment)
}

// multiExt returns compound extension (".map.yaml") of file name.
func multiExt(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	if i := strings.IndexByte(trimmed, '.'); i >= 0 {
		return trimmed[i:]
	}
	return ""
}

// cleanFileName removes characters not allowed in file names on any
// supported platform and leading dots.
func cleanFileName(in string) string {
	out := strings.TrimLeft(strings.Map(func(sym rune) rune {
		if sym < ' ' || strings.ContainsRune(`<>":/\|?*`+string(os.PathSeparator)+string(os.PathListSeparator), sym) {
			return -1
		}
		return sym
	}, in), ".")
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}
