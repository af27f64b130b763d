package version

// Set at build time via -ldflags "-X cursor-sync/src/version.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
