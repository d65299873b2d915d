// Package tasktree holds build metadata for the tasktree module.
package tasktree

// Version is the release version. Overridden at build time with
// -ldflags "-X github.com/mesh-intelligence/tasktree/pkg/tasktree.Version=...".
var Version = "0.1.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/tasktree"
