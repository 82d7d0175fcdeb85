package buildinfo

import (
	"testing"

	"github.com/nkoval/docsift/internal/model"
)

func TestApplyServerAddress(t *testing.T) {
	var info model.BuildInfo
	if !Apply("INFO    -  Serving on http://127.0.0.1:8000/", &info) {
		t.Fatal("expected capture")
	}
	if info.ServerAddress != "http://127.0.0.1:8000/" {
		t.Fatalf("address = %q", info.ServerAddress)
	}
}

func TestApplyDuration(t *testing.T) {
	var info model.BuildInfo
	Apply("INFO    -  Documentation built in 78.99 seconds", &info)
	if info.Duration != "78.99" {
		t.Fatalf("duration = %q", info.Duration)
	}
}

func TestApplyOutputDir(t *testing.T) {
	var info model.BuildInfo
	Apply("INFO    -  Building documentation to directory: /path/to/site", &info)
	if info.OutputDir != "/path/to/site" {
		t.Fatalf("dir = %q", info.OutputDir)
	}
}

func TestApplySphinxFields(t *testing.T) {
	var info model.BuildInfo
	Apply("build succeeded, 5 warnings.", &info)
	Apply("The HTML pages are in _build/html.", &info)
	Apply("The build finished in 3.2 sec", &info)
	if info.ReportedWarnings != 5 {
		t.Fatalf("warnings = %d", info.ReportedWarnings)
	}
	if info.OutputDir != "_build/html" {
		t.Fatalf("dir = %q", info.OutputDir)
	}
	if info.Duration != "3.2" {
		t.Fatalf("duration = %q", info.Duration)
	}
}

func TestApplyNoCapture(t *testing.T) {
	var info model.BuildInfo
	if Apply("INFO    -  Cleaning site directory", &info) {
		t.Fatal("expected no capture")
	}
	if info != (model.BuildInfo{}) {
		t.Fatalf("info mutated: %+v", info)
	}
}

func TestFromLines(t *testing.T) {
	info := FromLines([]string{
		"INFO    -  Building documentation to directory: /site",
		"INFO    -  Documentation built in 1.23 seconds",
		"INFO    -  Serving on http://localhost:8000/",
	})
	if info.OutputDir != "/site" || info.Duration != "1.23" || info.ServerAddress != "http://localhost:8000/" {
		t.Fatalf("got %+v", info)
	}
}
