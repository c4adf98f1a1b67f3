package config

import (
	"flag"
	"os"
	"time"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-l string   log level: debug, info, warn or error (default from Config)
//	-s string   directory for the file-based secret backend
//	-k          use the OS keyring when available (use -k=false to disable)
//	-p int      processing status poll interval in seconds
//
// Note: The function filters os.Args to only include the flags it knows about,
// using filterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := filterArgs(os.Args[1:], []string{"-l", "-s", "-k", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.SecretsDir, "s", cfg.SecretsDir, "directory for the file secret backend")
	fs.BoolVar(&cfg.UseKeyring, "k", cfg.UseKeyring, "use the OS keyring when available")
	pollInterval := fs.Int("p", int(cfg.PollInterval.Seconds()), "processing poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
}
