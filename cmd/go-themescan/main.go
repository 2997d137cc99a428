package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"gopkg.in/yaml.v3"

	"github.com/themescan/go-themescan/internal/fetcher"
	"github.com/themescan/go-themescan/internal/models"
	"github.com/themescan/go-themescan/pkg/themescan"
)

var (
	// Command line flags
	targetFlag       = flag.String("target", "", "Target URL to analyze")
	outputFlag       = flag.String("output", "", "Output file path")
	jsonFlag         = flag.Bool("json", false, "Output in JSON format")
	noColorFlag      = flag.Bool("no-color", false, "Disable colored output")
	silentFlag       = flag.Bool("silent", false, "Don't display any output")
	verboseFlag      = flag.Bool("verbose", false, "Enable debug logging")
	versionFlag      = flag.Bool("version", false, "Show version information")
	timeoutFlag      = flag.Int("timeout", 10, "Timeout in seconds for the direct fetch")
	retriesFlag      = flag.Int("retries", 2, "Number of fetch retries after the first attempt")
	relaysFlag       = flag.String("relays", "", "YAML file with a custom relay endpoint list")
	userAgentFlag    = flag.String("user-agent", "", "Custom User-Agent for direct fetches")
	cacheTTLFlag     = flag.Int("cache-ttl", 5, "Result cache TTL in minutes")
	noCacheFlag      = flag.Bool("no-cache", false, "Disable result caching")
	minBodyFlag      = flag.Int("min-body", 0, "Minimum relay body length accepted as a page (0 = default)")
	totalTimeoutFlag = flag.Int("total-timeout", 120, "Overall detection deadline in seconds")
)

// Version information
const (
	Version    = "0.1.0"
	BuildDate  = "2026-08-28"
	CommitHash = "development"
)

// relayFile is the YAML shape for a custom relay list.
type relayFile struct {
	Relays []struct {
		Name     string `yaml:"name"`
		Endpoint string `yaml:"endpoint"`
		Mode     string `yaml:"mode"`
		Timeout  int    `yaml:"timeout_seconds"`
	} `yaml:"relays"`
}

// loadRelays reads a relay list from a YAML file.
func loadRelays(path string) ([]fetcher.Relay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading relay file: %w", err)
	}

	var file relayFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing relay file: %w", err)
	}

	relays := make([]fetcher.Relay, 0, len(file.Relays))
	for _, r := range file.Relays {
		mode := fetcher.ModeDirect
		if r.Mode == string(fetcher.ModeWrapped) {
			mode = fetcher.ModeWrapped
		}
		relays = append(relays, fetcher.Relay{
			Name:     r.Name,
			Endpoint: r.Endpoint,
			Mode:     mode,
			Timeout:  time.Duration(r.Timeout) * time.Second,
		})
	}
	return relays, nil
}

func main() {
	flag.Parse()

	// Show version and exit if requested
	if *versionFlag {
		fmt.Printf("go-themescan version %s (build: %s, commit: %s)\n", Version, BuildDate, CommitHash)
		os.Exit(0)
	}

	// Local overrides such as THEMESCAN_USER_AGENT may live in a .env file
	_ = godotenv.Load()

	level := slog.LevelWarn
	if *verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:   level,
		NoColor: *noColorFlag,
	}))

	if *targetFlag == "" {
		flag.Usage()
		fmt.Println("\nError: target URL is required")
		os.Exit(1)
	}

	userAgent := *userAgentFlag
	if userAgent == "" {
		userAgent = os.Getenv("THEMESCAN_USER_AGENT")
	}

	options := []themescan.Option{
		themescan.WithLogger(logger),
		themescan.WithDirectTimeout(time.Duration(*timeoutFlag) * time.Second),
		themescan.WithMaxRetries(*retriesFlag),
		themescan.WithCacheTTL(time.Duration(*cacheTTLFlag) * time.Minute),
	}
	if userAgent != "" {
		options = append(options, themescan.WithUserAgent(userAgent))
	}
	if *noCacheFlag {
		options = append(options, themescan.WithoutCache())
	}
	if *minBodyFlag > 0 {
		options = append(options, themescan.WithMinBodyLength(*minBodyFlag))
	}
	if *relaysFlag != "" {
		relays, err := loadRelays(*relaysFlag)
		if err != nil {
			logger.Error("could not load relay list", "error", err)
			os.Exit(1)
		}
		options = append(options, themescan.WithRelays(relays))
	}

	detector := themescan.New(options...)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*totalTimeoutFlag)*time.Second)
	defer cancel()

	if !*silentFlag {
		fmt.Printf("Analyzing %s...\n", *targetFlag)
	}

	result := detector.DetectTheme(ctx, *targetFlag)

	var rendered string
	if *jsonFlag {
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Error("could not format JSON output", "error", err)
			os.Exit(1)
		}
		rendered = string(output) + "\n"
	} else {
		rendered = renderResult(result, !*noColorFlag && *outputFlag == "")
	}

	if *outputFlag != "" {
		if err := os.WriteFile(*outputFlag, []byte(rendered), 0644); err != nil {
			logger.Error("could not write output file", "error", err)
			os.Exit(1)
		}
		if !*silentFlag {
			fmt.Printf("Results written to %s\n", *outputFlag)
		}
	} else if !*silentFlag {
		fmt.Print(rendered)
	}

	if !result.Success {
		os.Exit(2)
	}
}

// renderResult formats a detection result as a styled text card.
func renderResult(result models.DetectionResult, colored bool) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	if !colored {
		titleStyle = lipgloss.NewStyle()
		labelStyle = lipgloss.NewStyle()
		errorStyle = lipgloss.NewStyle()
	}

	if !result.Success {
		return errorStyle.Render("Detection failed: "+result.Error) + "\n"
	}

	theme := result.Theme
	var b strings.Builder
	b.WriteString(titleStyle.Render("Theme: "+theme.Name) + "\n")

	writeField := func(label, value string) {
		if value != "" {
			b.WriteString(labelStyle.Render("  "+label+": ") + value + "\n")
		}
	}
	writeField("Author", theme.Author)
	writeField("Version", theme.Version)
	writeField("Description", theme.Description)
	writeField("Theme URI", theme.URI)
	writeField("Theme URL", theme.ThemeURL)
	writeField("Detected by", theme.DetectionMethod())

	if theme.ChildTheme != nil {
		writeField("Child theme", fmt.Sprintf("%s (parent: %s)", theme.ChildTheme.Name, theme.ChildTheme.Parent))
	}
	if len(theme.Plugins) > 0 {
		b.WriteString(labelStyle.Render("  Plugins: ") + strings.Join(theme.Plugins, ", ") + "\n")
		b.WriteString(fmt.Sprintf("Found %d plugins\n", len(theme.Plugins)))
	}
	return b.String()
}
