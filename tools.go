//go:build tools
// +build tools

// Package tools pins the versions of the development tools run with
// 'go run'. It is never part of the mwd binary.
package tools

import (
	// Linters
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
	// Import grouping and formatting
	_ "golang.org/x/tools/cmd/goimports"
	// HTML and func reports for coverage profiles
	_ "golang.org/x/tools/cmd/cover"
	// Release archives; stamps version and commit into cmd/mwd
	_ "github.com/goreleaser/goreleaser"
)
