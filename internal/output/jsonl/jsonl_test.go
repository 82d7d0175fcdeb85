package jsonl

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nkoval/docsift/internal/model"
)

func TestIssueEnvelope(t *testing.T) {
	var buf bytes.Buffer
	o := New(&buf, false)

	iss := model.Issue{
		Severity: model.Error,
		Source:   "mkdocs",
		Message:  "Config value error",
		File:     "docs/index.md",
	}
	if err := o.Issue(context.Background(), iss); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "\n") {
		t.Fatalf("entry spans multiple lines: %q", line)
	}

	var env struct {
		Kind  string       `json:"kind"`
		Issue *model.Issue `json:"issue"`
	}
	if err := json.Unmarshal([]byte(line), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Kind != "issue" {
		t.Errorf("kind = %q", env.Kind)
	}
	if env.Issue == nil || env.Issue.Message != "Config value error" {
		t.Errorf("issue = %+v", env.Issue)
	}
	if env.Issue.Severity != model.Error {
		t.Errorf("severity = %v", env.Issue.Severity)
	}
}

func TestCycleEnvelope(t *testing.T) {
	var buf bytes.Buffer
	o := New(&buf, false)

	cyc := model.BuildCycle{
		ID: "c1",
		Issues: []model.Issue{
			{Severity: model.Warning, Message: "broken link"},
		},
	}
	if err := o.Cycle(context.Background(), cyc); err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	var env struct {
		Kind  string            `json:"kind"`
		Cycle *model.BuildCycle `json:"cycle"`
	}
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Kind != "cycle" {
		t.Errorf("kind = %q", env.Kind)
	}
	if env.Cycle == nil || env.Cycle.ID != "c1" || len(env.Cycle.Issues) != 1 {
		t.Errorf("cycle = %+v", env.Cycle)
	}
}

func TestOneLinePerEntry(t *testing.T) {
	var buf bytes.Buffer
	o := New(&buf, false)
	for i := 0; i < 3; i++ {
		o.Issue(context.Background(), model.Issue{Message: "m"})
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
}
