package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config, logger *Logger) {
	printBanner(os.Stderr, config)

	logger.Info().
		Str("version", GetVersion()).
		Str("build", GetBuild()).
		Str("commit", GetGitCommit()).
		Str("environment", config.Environment).
		Str("service_url", serviceURL(config)).
		Str("data_path", config.Data.Path).
		Msg("Application started")
}

func serviceURL(config *Config) string {
	return fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)
}

func printBanner(w io.Writer, config *Config) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 64) + banner.ColorReset

	art := []string{
		`  ____        _           ____            _     `,
		` / ___|  __ _| | ___  ___|  _ \  __ _ ___| |__  `,
		` \___ \ / _' | |/ _ \/ __| | | |/ _' / __| '_ \ `,
		`  ___) | (_| | |  __/\__ \ |_| | (_| \__ \ | | |`,
		` |____/ \__,_|_|\___||___/____/ \__,_|___/_| |_|`,
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Business Sales & Profit Dashboard%s\n\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n\n", hr)

	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Build", GetBuild()},
		{"Commit", GetGitCommit()},
		{"Environment", config.Environment},
		{"Service URL", serviceURL(config)},
		{"Dataset", config.Data.Path},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-16s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
}

// PrintShutdownBanner displays the application shutdown banner to stderr.
func PrintShutdownBanner(logger *Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 42) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  SALESDASH: SHUTTING DOWN%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info().Msg("Application shutting down")
}
