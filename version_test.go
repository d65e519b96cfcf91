package transroute

import "testing"

func TestFullVersion(t *testing.T) {
	orig := GitCommit
	defer func() { GitCommit = orig }()

	GitCommit = "unknown"
	if got := FullVersion(); got != Version {
		t.Errorf("FullVersion() = %q, want %q", got, Version)
	}

	GitCommit = "0123456789abcdef"
	if got := FullVersion(); got != Version+"+0123456" {
		t.Errorf("FullVersion() = %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "transroute/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}
