package process

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"stylx/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context string
	// Name is source file name without extension
	Name string
	// Dir is slash separated source directory
	Dir string
	// Hash is unit hash, it is also the prefix of every unit alias
	Hash   string
	Source string
}

func newValues(name config.TemplateFieldName, src, hash string) Values {
	return Values{
		Context: string(name),
		Name:    strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		Dir:     filepath.ToSlash(filepath.Dir(src)),
		Hash:    hash,
		Source:  filepath.ToSlash(src),
	}
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
