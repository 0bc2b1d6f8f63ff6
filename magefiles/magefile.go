//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the menu project using Mage.
//
// Usage:
//
//	mage build          Compile menuctl to bin/
//	mage install        Install menuctl to GOPATH/bin
//	mage test:all       Run every test
//	mage test:unit      Run tests in short mode
//	mage test:race      Run tests with the race detector
//	mage test:cover     Write coverage.out and print the summary
//	mage lint           Run golangci-lint
//	mage vet            Run go vet
//	mage serve          Build, then serve ./data on :8080
//	mage clean          Remove build artifacts
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "menuctl"
	binaryDir  = "bin"
	cmdDir     = "./cmd/menuctl"
)

// version describes the working tree for -ldflags, "dev" outside git.
func version() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || strings.TrimSpace(out) == "" {
		return "dev"
	}
	return strings.TrimSpace(out)
}

// Build compiles the menuctl binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	ldflags := "-X main.version=" + version()
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags, "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Serve builds menuctl and serves the ./data directory.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "serve", "--data-dir", "data")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := os.Remove("coverage.out"); err != nil && !os.IsNotExist(err) {
		return err
	}
	return sh.RunV(binGo, "clean")
}
