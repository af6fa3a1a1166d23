//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the workbench project using Mage.
//
// Usage:
//
//	mage build        Compile the workbench binary to bin/
//	mage test:all     Run all tests
//	mage test:unit    Run tests without the race detector
//	mage test:race    Run tests with the race detector
//	mage test:cover   Write coverage.out and print a summary
//	mage lint         Run golangci-lint
//	mage clean        Remove build artifacts
//	mage install      Install workbench to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "workbench"
	binaryDir  = "bin"
	cmdDir     = "./cmd/workbench"
	modulePath = "github.com/mesh-intelligence/workbench"
)

// Build compiles the workbench binary to bin/. VERSION, when set, is
// stamped into the binary.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v"}
	if v := os.Getenv("VERSION"); v != "" {
		args = append(args, "-ldflags", "-X "+modulePath+"/pkg/workbench.Version="+v)
	}
	args = append(args, "-o", filepath.Join(binaryDir, binaryName), cmdDir)
	return sh.RunV(binGo, args...)
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
