// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: GitHub Flavored Markdown for sharing
//
// Each writer renders three documents: the read reports produced by
// `qrreader read`, the error catalog printed by `qrreader errors`, and the
// history listing printed by `qrreader history`.
package report
