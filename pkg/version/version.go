package version

// Set at build time:
//
//	-X 'github.com/salesdesk/salesdesk/pkg/version.Version=v1.0.0'
//	-X 'github.com/salesdesk/salesdesk/pkg/version.CommitHash=abc123'
//	-X 'github.com/salesdesk/salesdesk/pkg/version.BuildDate=2026-01-01T00:00:00Z'
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Info is the build information printed by `salesdesk version`.
type Info struct {
	Version    string `json:"version"     yaml:"version"`
	CommitHash string `json:"commit_hash" yaml:"commit_hash"`
	BuildDate  string `json:"build_date"  yaml:"build_date"`
}

func Get() Info {
	return Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildDate:  BuildDate,
	}
}
