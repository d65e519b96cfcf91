package transroute

// Version information for transroute.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/transroute.GitCommit=$(git rev-parse HEAD)"
const (
	// Name is the library name.
	Name = "transroute"

	// Description is a short description of the library.
	Description = "Multi-provider AI translation routing with retries and failover"

	// Version is the semantic version of the library.
	Version = "0.1.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/transroute"

	// License is the software license.
	License = "MIT"
)

// BuildInfo contains build-time information, set via ldflags.
var (
	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// FullVersion returns the version string with the short commit hash when known.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns the User-Agent sent with provider requests.
func UserAgent() string {
	return Name + "/" + Version
}
