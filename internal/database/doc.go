// Package database provides SQLite-based storage for qrreader.
//
// The HistoryDB records every read performed by the CLI or the HTTP service:
// the URL, the outcome, the digest of the fetched bytes and the full read
// report as JSON. It backs `qrreader history` and GET /history.
//
// SQLite (via modernc.org/sqlite) keeps the store a single CGO-free file
// under the XDG data directory. WAL mode lets the server read history while
// requests append to it.
package database
