package docsift_test

import (
	"strings"
	"testing"

	"github.com/nkoval/docsift/pkg/docsift"
)

const buildLog = `INFO    -  Building documentation...
WARNING -  Doc file 'index.md' contains a link 'missing.md', but the target is not found among documentation files.
WARNING -  markdown_exec: Execution of python code block exited with errors
Code block is:

  import os
  raise RuntimeError(os.getcwd())

Output is:

  Traceback (most recent call last):
    File "<code block: session demo; n0>", line 2, in <module>
  RuntimeError: /tmp/build

ERROR   -  Error reading page 'bad.md': invalid front matter
INFO    -  Documentation built in 0.42 seconds
`

func TestParse(t *testing.T) {
	rep, err := docsift.Parse(strings.NewReader(buildLog))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(rep.Issues) != 3 {
		t.Fatalf("got %d issues, want 3: %+v", len(rep.Issues), rep.Issues)
	}
	if rep.Errors != 1 || rep.Warnings != 2 {
		t.Errorf("counts = %d errors, %d warnings", rep.Errors, rep.Warnings)
	}
	if rep.BuildInfo.Duration != "0.42" {
		t.Errorf("duration = %q", rep.BuildInfo.Duration)
	}

	exec := rep.Issues[1]
	if exec.Source != "markdown_exec" {
		t.Fatalf("second issue source = %q", exec.Source)
	}
	if exec.Session != "demo" || exec.Line != 2 {
		t.Errorf("exec context = session %q line %d", exec.Session, exec.Line)
	}
	if len(exec.CodeBlock) != 2 || exec.CodeBlock[0].Text != "import os" {
		t.Errorf("code block = %+v", exec.CodeBlock)
	}
	if !strings.Contains(exec.Message, "RuntimeError") {
		t.Errorf("message = %q", exec.Message)
	}
}

func TestParseErrorsOnly(t *testing.T) {
	rep, err := docsift.Parse(strings.NewReader(buildLog), docsift.WithErrorsOnly())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rep.Issues) != 1 || rep.Issues[0].Severity != docsift.Error {
		t.Fatalf("issues = %+v", rep.Issues)
	}
}

func TestParseLinesMatchesParse(t *testing.T) {
	fromReader, err := docsift.Parse(strings.NewReader(buildLog))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fromLines := docsift.ParseLines(strings.Split(strings.TrimRight(buildLog, "\n"), "\n"))
	if len(fromReader.Issues) != len(fromLines.Issues) {
		t.Fatalf("issue counts differ: %d vs %d", len(fromReader.Issues), len(fromLines.Issues))
	}
}

func TestParseSphinx(t *testing.T) {
	log := "docs/api.rst:14: WARNING: undefined label: 'setup' [ref.ref]\n" +
		"build succeeded, 1 warning.\n"
	rep, err := docsift.Parse(strings.NewReader(log), docsift.WithTool("sphinx"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rep.Issues) != 1 {
		t.Fatalf("issues = %+v", rep.Issues)
	}
	iss := rep.Issues[0]
	if iss.File != "docs/api.rst" || iss.Line != 14 || iss.WarningCode != "ref.ref" {
		t.Errorf("issue = %+v", iss)
	}
}
