package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func collect(t *testing.T, s Source) []string {
	t.Helper()
	ch, err := s.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	var lines []string
	for line := range ch {
		lines = append(lines, line)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	return lines
}

func TestReaderSource(t *testing.T) {
	s := NewReader(strings.NewReader("one\ntwo\r\nthree"))
	lines := collect(t, s)
	want := []string{"one", "two", "three"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestReaderSourceCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewReader(strings.NewReader(strings.Repeat("line\n", 1000)))
	ch, err := s.Lines(ctx)
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	<-ch
	cancel()
	for range ch {
	}
	if s.Err() != context.Canceled {
		t.Errorf("Err = %v, want context.Canceled", s.Err())
	}
}

func TestCommandSource(t *testing.T) {
	s := NewCommand("sh", "-c", "echo out; echo err 1>&2")
	lines := collect(t, s)
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	seen := map[string]bool{}
	for _, line := range lines {
		seen[line] = true
	}
	if !seen["out"] || !seen["err"] {
		t.Errorf("missing stream output: %q", lines)
	}
	if code := s.ExitCode(); code != 0 {
		t.Errorf("exit code = %d", code)
	}
}

func TestCommandSourceFailure(t *testing.T) {
	s := NewCommand("sh", "-c", "echo partial; exit 3")
	ch, err := s.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	var lines []string
	for line := range ch {
		lines = append(lines, line)
	}
	if len(lines) != 1 || lines[0] != "partial" {
		t.Errorf("lines = %q", lines)
	}
	if s.Err() == nil {
		t.Error("expected error for nonzero exit")
	}
	if code := s.ExitCode(); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}

func TestRemotePlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("WARNING -  a\nERROR -  b\n"))
	}))
	defer srv.Close()

	lines := collect(t, NewRemote(srv.URL))
	if len(lines) != 2 || lines[0] != "WARNING -  a" {
		t.Fatalf("lines = %q", lines)
	}
}

func TestRemoteJSONUnwrap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 1, "output": "line one\nline two"}`))
	}))
	defer srv.Close()

	lines := collect(t, NewRemote(srv.URL))
	if len(lines) != 2 || lines[0] != "line one" || lines[1] != "line two" {
		t.Fatalf("lines = %q", lines)
	}
}

func TestRemoteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewRemote(srv.URL)
	if _, err := r.Lines(context.Background()); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{
			"https://readthedocs.org/projects/myproj/builds/12345/",
			"https://readthedocs.org/api/v2/build/12345.txt",
		},
		{
			"https://app.readthedocs.org/projects/myproj/builds/678",
			"https://readthedocs.org/api/v2/build/678.txt",
		},
		{
			"https://ci.example.com/logs/raw.txt",
			"https://ci.example.com/logs/raw.txt",
		},
	}
	for _, tc := range cases {
		if got := NormalizeURL(tc.in); got != tc.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
