package config

import (
	"flag"
	"os"
	"time"

	"github.com/fhuaranca/dniadmin/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the lookup service (default from Config)
//	-t int      request timeout in seconds (default from Config)
//	-d int      search debounce window in milliseconds (default from Config)
//	-p int      initial page size (default from Config)
//	-b string   backup output subdirectory (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other
// components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-p", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the lookup service")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	debounce := fs.Int("d", int(cfg.SearchDebounce.Milliseconds()), "search debounce window (in milliseconds)")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "initial page size")
	fs.StringVar(&cfg.BackupDir, "b", cfg.BackupDir, "backup output subdirectory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.SearchDebounce = time.Duration(*debounce) * time.Millisecond
}
