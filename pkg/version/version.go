// Package version holds build metadata stamped in with -ldflags.
package version

import (
	"fmt"
	"log/slog"
	"runtime"
)

// Set at link time, e.g.
//
//	go build -ldflags "-X github.com/NERVsystems/tripgomcp/pkg/version.BuildCommit=$(git rev-parse --short HEAD)"
var (
	BuildVersion = "0.3.0"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// UserAgent is sent with every upstream request.
func UserAgent() string {
	return "tripgomcp/" + BuildVersion
}

// String is printed by the -version flag.
func String() string {
	return fmt.Sprintf("tripgomcp %s (commit %s, built %s, %s)",
		BuildVersion, BuildCommit, BuildDate, runtime.Version())
}

// Attr groups the build metadata for structured startup logs.
func Attr() slog.Attr {
	return slog.Group("build",
		slog.String("version", BuildVersion),
		slog.String("commit", BuildCommit),
		slog.String("date", BuildDate),
		slog.String("go", runtime.Version()),
	)
}
