// Command transroute translates text through the configured AI providers.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ZaguanLabs/transroute"
	"github.com/ZaguanLabs/transroute/cache"
	"github.com/ZaguanLabs/transroute/provider"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = transroute.Version
	commit    = transroute.GitCommit
	buildDate = transroute.BuildDate
)

// Swapped in tests.
var (
	newDispatcher = func(logger log.FieldLogger) transroute.Dispatcher {
		return provider.NewDispatcher(provider.Options{Logger: logger})
	}
	newRelay = func(url string, logger log.FieldLogger) transroute.Relay {
		if r := provider.NewRelay(provider.RelayConfig{URL: url, Logger: logger}); r != nil {
			return r
		}
		return nil
	}
	stdin io.Reader = os.Stdin
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	targetLang  string
	custom      string
	providers   string
	images      string
	attach      string
	output      string
	quotaFile   string
	importCache string
	exportCache string
	trial       bool
	test        bool
	jsonOutput  bool
	quiet       bool
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("transroute", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.targetLang, "lang", "", "Target language name or code (e.g., French, es_ES)")
	fs.StringVar(&opts.custom, "prompt", "", "Additional translation instructions")
	fs.StringVar(&opts.providers, "providers", "", "YAML provider list (default: TRANSROUTE_PROVIDERS_FILE)")
	fs.StringVar(&opts.images, "image", "", "Comma-separated image files to translate")
	fs.StringVar(&opts.attach, "attach", "", "Comma-separated text files to attach")
	fs.StringVar(&opts.output, "output", "", "Output file (default: stdout)")
	fs.StringVar(&opts.output, "o", "", "Output file (short for --output)")
	fs.StringVar(&opts.quotaFile, "quota-file", defaultQuotaFile(), "Where the trial quota is persisted")
	fs.StringVar(&opts.importCache, "import-cache", "", "Seed the model cache from an export file")
	fs.StringVar(&opts.exportCache, "export-cache", "", "Write the model cache to a file after the run")
	fs.BoolVar(&opts.trial, "trial", false, "Use the shared trial relay instead of your keys")
	fs.BoolVar(&opts.test, "test", false, "Probe every configured key and exit")
	fs.BoolVar(&opts.jsonOutput, "json", false, "Output result as JSON")
	fs.BoolVar(&opts.quiet, "quiet", false, "Suppress progress output")
	showVersion := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", transroute.Name, version)
		if commit != "unknown" && commit != "" {
			fmt.Fprintf(stdout, "  commit:  %s\n", commit)
		}
		if buildDate != "unknown" && buildDate != "" {
			fmt.Fprintf(stdout, "  built:   %s\n", buildDate)
		}
		return nil
	}

	if !opts.test && opts.targetLang == "" {
		fs.Usage()
		return fmt.Errorf("--lang is required")
	}

	settings, err := transroute.SettingsFromEnv()
	if err != nil {
		return err
	}

	logger := log.New()
	logger.SetOutput(stderr)
	logger.SetLevel(settings.LogLevel)
	if opts.quiet {
		logger.SetLevel(log.WarnLevel)
	}

	configs, err := loadConfigs(opts.providers, settings)
	if err != nil {
		return err
	}

	modelCache, closeCache, err := openCache(settings, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	if opts.importCache != "" {
		result, err := cache.NewImporter(modelCache).ImportFromFile(opts.importCache)
		if err != nil {
			return fmt.Errorf("importing model cache: %w", err)
		}
		logger.WithField("imported", result.Imported).Info("Model cache seeded")
	}

	router := buildRouter(opts, settings, configs, modelCache, logger)

	ctx := context.Background()
	if opts.test {
		err = runTest(ctx, router, configs, stdout)
	} else {
		err = runTranslate(ctx, router, fs.Args(), opts, stdout, stderr)
	}
	if err != nil {
		return err
	}

	if opts.exportCache != "" {
		meta := map[string]string{"generator": transroute.Name + "/" + transroute.FullVersion()}
		if err := cache.NewExporter(modelCache).ExportToFile(opts.exportCache, meta); err != nil {
			return fmt.Errorf("exporting model cache: %w", err)
		}
	}
	return nil
}

func loadConfigs(path string, settings transroute.Settings) ([]transroute.ProviderConfig, error) {
	if path == "" {
		path = settings.ProvidersFile
	}
	if path == "" {
		return nil, nil
	}
	configs, err := transroute.LoadProviderConfigsFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading providers: %w", err)
	}
	return configs, nil
}

func openCache(settings transroute.Settings, logger log.FieldLogger) (transroute.ModelCache, func(), error) {
	if settings.RedisURL == "" {
		return cache.NewInMemoryCache(0), func() {}, nil
	}
	rc, err := cache.NewRedisCache(cache.RedisConfig{URL: settings.RedisURL})
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	rc.SetLogger(logger)
	return rc, func() { _ = rc.Close() }, nil
}

func buildRouter(opts options, settings transroute.Settings, configs []transroute.ProviderConfig, modelCache transroute.ModelCache, logger log.FieldLogger) *transroute.Router {
	quota := transroute.NewDailyQuota(settings.TrialDailyLimit, provider.DeviceID(),
		transroute.WithQuotaHook(func(s transroute.QuotaState) {
			if err := saveQuota(opts.quotaFile, s); err != nil {
				logger.WithError(err).Warn("Failed to persist trial quota")
			}
		}))
	if s, ok := loadQuota(opts.quotaFile); ok {
		quota.Restore(s)
	}

	trial := transroute.NewTrialClient(newRelay(settings.TrialRelayURL, logger), quota,
		transroute.WithTrialLogger(logger),
		transroute.WithTrialRetry(settings.RetryConfig()),
	)

	dispatcher := newDispatcher(logger)
	if settings.RateLimitRPM > 0 {
		dispatcher = transroute.NewRateLimitedDispatcher(dispatcher, transroute.RateLimitConfig{
			RequestsPerMinute: settings.RateLimitRPM,
		})
	}

	router := transroute.NewRouter(dispatcher,
		transroute.WithLogger(logger),
		transroute.WithRetryConfig(settings.RetryConfig()),
		transroute.WithModelCache(modelCache),
		transroute.WithTrialClient(trial),
	)
	router.Configure(configs, nil)

	if opts.trial || (len(configs) == 0 && settings.TrialRelayURL != "") {
		router.SetTrialMode(true)
	}
	return router
}

func runTest(ctx context.Context, router *transroute.Router, configs []transroute.ProviderConfig, stdout io.Writer) error {
	if len(configs) == 0 {
		return transroute.ErrNotConfigured
	}

	working := 0
	for i, cfg := range configs {
		model, err := router.TestConnection(ctx, cfg)
		if err != nil {
			fmt.Fprintf(stdout, "Key #%d (%s): FAILED %v\n", i+1, transroute.MaskKey(cfg.APIKey), err)
			continue
		}
		working++
		fmt.Fprintf(stdout, "Key #%d (%s): OK %s\n", i+1, transroute.MaskKey(cfg.APIKey), model)
	}

	if working == 0 {
		return errors.New("no configured key works")
	}
	return nil
}

func runTranslate(ctx context.Context, router *transroute.Router, args []string, opts options, stdout, stderr io.Writer) error {
	input, inputName, err := readInput(args, opts.images != "")
	if err != nil {
		return err
	}

	images := splitList(opts.images)
	files, err := readAttachments(splitList(opts.attach))
	if err != nil {
		return err
	}

	if strings.TrimSpace(input) == "" && len(images) > 0 {
		input = "the text shown in the attached image"
	}
	prompt := transroute.BuildTranslationPrompt(input, opts.targetLang, opts.custom)

	if !opts.quiet {
		fmt.Fprintf(stderr, "Translating %s to %s...\n", inputName, transroute.GetLanguageName(opts.targetLang))
	}

	start := time.Now()
	var text string
	if len(images) > 0 || len(files) > 0 {
		text, err = router.TranslateMultimodal(ctx, prompt, images, files)
	} else {
		text, err = router.Translate(ctx, prompt)
	}
	if err != nil {
		fmt.Fprintln(stderr, transroute.UserMessage(err))
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	var out io.Writer = stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if opts.jsonOutput {
		return outputJSON(out, router, text, elapsed)
	}

	fmt.Fprintln(out, text)
	if !opts.quiet && router.TrialMode() {
		fmt.Fprintf(stderr, "Trial translations left today: %d/%d\n", router.Remaining(), router.DailyLimit())
	}
	return nil
}

func readInput(args []string, optional bool) (string, string, error) {
	if len(args) == 0 {
		if optional {
			return "", "image", nil
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	data, err := os.ReadFile(args[0]) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), filepath.Base(args[0]), nil
}

func readAttachments(paths []string) ([]transroute.FileText, error) {
	files := make([]transroute.FileText, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return nil, fmt.Errorf("reading attachment: %w", err)
		}
		files = append(files, transroute.FileText{Name: filepath.Base(p), Content: string(data)})
	}
	return files, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultQuotaFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, transroute.Name, "trial_quota.json")
}

func loadQuota(path string) (transroute.QuotaState, bool) {
	if path == "" {
		return transroute.QuotaState{}, false
	}
	data, err := os.ReadFile(path) // #nosec G304 - path comes from a flag
	if err != nil {
		return transroute.QuotaState{}, false
	}
	var s transroute.QuotaState
	if err := json.Unmarshal(data, &s); err != nil {
		return transroute.QuotaState{}, false
	}
	return s, true
}

func saveQuota(path string, s transroute.QuotaState) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// JSONOutput represents the JSON output format.
type JSONOutput struct {
	Text           string `json:"text"`
	Trial          bool   `json:"trial"`
	TrialRemaining *int   `json:"trial_remaining,omitempty"`
	ElapsedMs      int64  `json:"elapsed_ms"`
}

// outputJSON writes the result as JSON.
func outputJSON(w io.Writer, router *transroute.Router, text string, elapsed time.Duration) error {
	out := JSONOutput{
		Text:      text,
		Trial:     router.TrialMode(),
		ElapsedMs: elapsed.Milliseconds(),
	}
	if out.Trial {
		remaining := router.Remaining()
		out.TrialRemaining = &remaining
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
