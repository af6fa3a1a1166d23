// Package workbench holds build metadata for the workbench module.
package workbench

// Version is the release version. Release builds override it with
// -ldflags "-X github.com/mesh-intelligence/workbench/pkg/workbench.Version=...".
var Version = "0.1.0"
