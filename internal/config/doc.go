// Package config provides configuration structures and utilities for qrreader.
// It defines the options shared by the HTTP service and the CLI: listen
// address, authentication, fetch constraints, batch concurrency and the
// history store location. Values come from defaults, the .qrreader YAML file,
// the environment and command line flags, in increasing precedence.
package config
