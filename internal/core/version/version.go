// Package version provides information about the build version of the connector.
package version

// BuildInfo holds version information about the connector build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information for service. The version, commit, and date
// variables are intended to be set at build time using -ldflags.
func Info(service string) BuildInfo {
	// Set via -ldflags "-X 'hubconnect/internal/core/version.version=v0.0.1'
	// -X 'hubconnect/internal/core/version.commit=abcd' -X 'hubconnect/internal/core/version.date=2026-10-01'"
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
