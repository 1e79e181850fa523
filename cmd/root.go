package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brogergvhs/nelo/internal/config"
	"github.com/brogergvhs/nelo/internal/util"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool

	// transport
	flagBaseURL    string
	flagTimeout    time.Duration
	flagRateLimit  float64
	flagAttempts   int
	flagCloudflare bool

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

var rootCmd = &cobra.Command{
	Use:           "nelo",
	Short:         "Browse, search and download from Manganelo",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&flagDebug, "debug", false, "enable debug logging")
	pf.BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")

	pf.StringVar(&flagBaseURL, "base-url", "", "site root, e.g. https://manganelo.com")
	pf.DurationVar(&flagTimeout, "timeout", 0, "per-request timeout (e.g. 30s)")
	pf.Float64Var(&flagRateLimit, "rate", 0, "max requests per second")
	pf.IntVar(&flagAttempts, "attempts", 0, "attempts per request for network errors and 5xx")
	pf.BoolVar(&flagCloudflare, "cloudflare", false, "enable the Cloudflare bypass transport")

	pf.StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	pf.StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	pf.StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
}

// globalOptions collects the persistent flags into config overrides.
func globalOptions() config.Options {
	return config.Options{
		IgnoreConfig:     flagIgnoreConfig,
		Debug:            flagDebug,
		BaseURL:          flagBaseURL,
		Timeout:          flagTimeout,
		RateLimit:        flagRateLimit,
		Attempts:         flagAttempts,
		CloudflareBypass: flagCloudflare,
		Cookie:           flagCookie,
		CookieFile:       flagCookieFile,
		UserAgent:        flagUserAgent,
	}
}

func Execute() {
	ctx, cancel := util.InterruptContext(context.Background(), os.Stderr)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}
