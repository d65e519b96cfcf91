package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/ZaguanLabs/transroute"
	"github.com/ZaguanLabs/transroute/provider"
)

type stubRelay struct {
	calls int
}

func (r *stubRelay) Complete(ctx context.Context, prompt, deviceID string) (string, error) {
	r.calls++
	return "trial answer", nil
}

// setup isolates a test from the environment and swaps in a mock dispatcher.
func setup(t *testing.T, input string) (*provider.MockDispatcher, string) {
	t.Helper()
	for _, key := range []string{
		transroute.EnvTrialRelayURL, transroute.EnvTrialDailyLimit, transroute.EnvMaxRetries,
		transroute.EnvBaseDelay, transroute.EnvMaxDelay, transroute.EnvLogLevel,
		transroute.EnvRedisURL, transroute.EnvProvidersFile, transroute.EnvRateLimitRPM,
	} {
		t.Setenv(key, "")
	}
	t.Setenv(transroute.EnvMaxRetries, "0")

	mock := provider.NewMockDispatcher()
	origDispatcher, origRelay, origStdin := newDispatcher, newRelay, stdin
	newDispatcher = func(log.FieldLogger) transroute.Dispatcher { return mock }
	newRelay = func(string, log.FieldLogger) transroute.Relay { return nil }
	stdin = strings.NewReader(input)
	t.Cleanup(func() {
		newDispatcher, newRelay, stdin = origDispatcher, origRelay, origStdin
	})

	return mock, t.TempDir()
}

func writeProviders(t *testing.T, dir, doc string) string {
	t.Helper()
	path := filepath.Join(dir, "providers.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"--version"}, &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "transroute") {
		t.Errorf("expected version output, got: %s", stdout.String())
	}
}

func TestRun_MissingLang(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "--lang is required") {
		t.Errorf("expected '--lang is required' error, got: %v", err)
	}
}

func TestRun_NotConfigured(t *testing.T) {
	_, dir := setup(t, "Hello")

	var stdout, stderr bytes.Buffer
	err := run([]string{"--lang", "fr", "--quota-file", filepath.Join(dir, "q.json")}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected an error without providers")
	}
	if !strings.Contains(stderr.String(), "No API key configured") {
		t.Errorf("expected user hint on stderr, got: %s", stderr.String())
	}
}

func TestRun_Translate(t *testing.T) {
	mock, dir := setup(t, "Hello")
	providers := writeProviders(t, dir, `
- api_key: k1
  provider: Groq
  model: bad-model
- api_key: k2
  model: gemini-2.0-flash
`)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--lang", "fr", "--providers", providers, "--quota-file", filepath.Join(dir, "q.json"), "--quiet"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("unexpected error: %v (stderr: %s)", err, stderr.String())
	}
	if got := stdout.String(); got != "Bonjour\n" {
		t.Errorf("stdout = %q, want %q", got, "Bonjour\n")
	}
	if mock.CallCount != 2 {
		t.Errorf("expected 2 dispatches, got %d", mock.CallCount)
	}
	if !strings.Contains(mock.LastReq.Prompt, "Translate the following text to French.") {
		t.Errorf("unexpected prompt: %q", mock.LastReq.Prompt)
	}
}

func TestRun_JSONAndExportCache(t *testing.T) {
	mock, dir := setup(t, "Hello")
	mock.Responses["llama-3.3-70b-versatile"] = "Hola"
	providers := writeProviders(t, dir, "providers:\n  - api_key: gsk_auto_key_0001\n")
	export := filepath.Join(dir, "models.json")

	var stdout, stderr bytes.Buffer
	err := run([]string{
		"--lang", "es", "--providers", providers, "--json", "--quiet",
		"--quota-file", filepath.Join(dir, "q.json"), "--export-cache", export,
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out JSONOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if out.Text != "Hola" || out.Trial {
		t.Errorf("unexpected output: %+v", out)
	}

	data, err := os.ReadFile(export)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if !strings.Contains(string(data), "llama-3.3-70b-versatile") {
		t.Errorf("export should contain the resolved model: %s", data)
	}
}

func TestRun_TestConnections(t *testing.T) {
	_, dir := setup(t, "")
	providers := writeProviders(t, dir, `
- api_key: sk-broken-key-123
  model: gpt-4o
- api_key: sk-working-key-456
  model: gpt-4o-mini
`)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--test", "--providers", providers, "--quota-file", filepath.Join(dir, "q.json")}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "Key #1 (sk-b...): FAILED") {
		t.Errorf("expected first key to fail: %s", out)
	}
	if !strings.Contains(out, "Key #2 (sk-w...): OK gpt-4o-mini") {
		t.Errorf("expected second key to pass: %s", out)
	}
	if strings.Contains(out, "broken-key") {
		t.Error("keys must be masked")
	}
}

func TestRun_TrialMode(t *testing.T) {
	mock, dir := setup(t, "Hello")
	relay := &stubRelay{}
	newRelay = func(string, log.FieldLogger) transroute.Relay { return relay }
	t.Setenv(transroute.EnvTrialDailyLimit, "5")
	quotaFile := filepath.Join(dir, "quota.json")

	var stdout, stderr bytes.Buffer
	err := run([]string{"--lang", "de", "--trial", "--quota-file", quotaFile}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "trial answer" {
		t.Errorf("stdout = %q", stdout.String())
	}
	if relay.calls != 1 || mock.CallCount != 0 {
		t.Errorf("relay calls = %d, dispatcher calls = %d", relay.calls, mock.CallCount)
	}
	if !strings.Contains(stderr.String(), "4/5") {
		t.Errorf("expected remaining count on stderr: %s", stderr.String())
	}

	state, ok := loadQuota(quotaFile)
	if !ok || state.Used != 1 || state.DailyLimit != 5 {
		t.Errorf("quota not persisted: %+v", state)
	}
}

func TestRun_TrialBlocksImages(t *testing.T) {
	_, dir := setup(t, "")
	newRelay = func(string, log.FieldLogger) transroute.Relay { return &stubRelay{} }

	var stdout, stderr bytes.Buffer
	err := run([]string{"--lang", "de", "--trial", "--image", "scan.png", "--quota-file", filepath.Join(dir, "q.json")}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected trial feature error")
	}
	if !strings.Contains(stderr.String(), "not available in trial mode") {
		t.Errorf("unexpected stderr: %s", stderr.String())
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a.png, ,b.png ")
	if len(got) != 2 || got[0] != "a.png" || got[1] != "b.png" {
		t.Errorf("splitList() = %v", got)
	}
	if splitList("") != nil {
		t.Error("empty list should be nil")
	}
}
