package config

import "fmt"

// ModuleName is the name of the Go module, injected at link time.
var ModuleName = "github/chapool/go-remotesigner"

// Commit is the git commit the binary was built from, injected at link time.
var Commit = "local"

// BuildDate is the RFC3339 build timestamp, injected at link time.
var BuildDate = "unknown"

// GetFormattedBuildArgs returns "<ModuleName> @ <Commit> (<BuildDate>)".
func GetFormattedBuildArgs() string {
	return fmt.Sprintf("%v @ %v (%v)", ModuleName, Commit, BuildDate)
}
