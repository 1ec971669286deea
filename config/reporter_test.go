package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer zr.Close()

	res := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		res[f.Name] = string(data)
	}
	return res
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	src := filepath.Join(dir, "button.yaml")
	if err := os.WriteFile(src, []byte("styles: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	r.Store("sources/button.yaml", src)
	r.Store("absent.log", filepath.Join(dir, "absent.log"))
	r.StoreData("out/button.css", []byte(".x0{color:red;}"))
	r.StoreData("out/button.css", []byte(".x1{color:blue;}"))

	if r.Name() != conf.Destination {
		t.Errorf("Name() = %q, want %q", r.Name(), conf.Destination)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	files := readArchive(t, conf.Destination)
	if files["sources/button.yaml"] != "styles: {}\n" {
		t.Errorf("source = %q", files["sources/button.yaml"])
	}
	if files["out/button.css"] != ".x0{color:red;}" {
		t.Errorf("data = %q", files["out/button.css"])
	}
	if _, ok := files["absent.log"]; ok {
		t.Error("absent files must be skipped")
	}
	versioned := 0
	for name := range files {
		if strings.HasPrefix(name, "out/button.css-") {
			versioned++
		}
	}
	if versioned != 1 {
		t.Errorf("expected versioned copy of repeated data, archive has %v", files)
	}
	if !strings.Contains(files["MANIFEST"], "sources/button.yaml") {
		t.Errorf("MANIFEST = %q", files["MANIFEST"])
	}
}

func TestReport_StorePanicsOnOverwrite(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("a", "/tmp/one")
	r.Store("a", "/tmp/one")

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	r.Store("a", "/tmp/two")
}

func TestReport_Nil(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreData("c", nil)
	if r.Name() != "" {
		t.Error("nil report has no name")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
