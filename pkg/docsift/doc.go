// Package docsift parses MkDocs and Sphinx build output, reducing it to
// the warnings and errors that need attention.
//
// Quick start:
//
//	f, err := os.Open("build.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	report, err := docsift.Parse(f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, iss := range report.Issues {
//	    fmt.Println(iss.Severity, iss.Message)
//	}
//
// Multi-line structure is preserved: code listings and captured output
// printed by markdown_exec are attached to the issue they belong to, and
// repeated diagnostics are reported once. For live dev-server streams use
// the docsift command, which adds rebuild-cycle tracking.
package docsift
