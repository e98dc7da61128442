package stubapi

import (
	"flag"
	"os"

	"github.com/fhuaranca/dniadmin/internal/flagx"
)

// Config holds runtime settings for the stub service.
//
// Fields:
//   - Addr: bind address for the HTTP endpoint.
//   - DBPath: sqlite database file.
//   - AdminUser / AdminPassword: Basic-auth credentials. The password is
//     bcrypt-hashed at startup and never kept in plain form afterwards.
type Config struct {
	Addr          string
	DBPath        string
	AdminUser     string
	AdminPassword string
}

// LoadDefaults populates Config with development defaults. The credentials
// match the real service's shipped defaults; override them for anything
// reachable from outside localhost.
func (c *Config) LoadDefaults() {
	c.Addr = ":8000"
	c.DBPath = "personas.db"
	c.AdminUser = "admin"
	c.AdminPassword = "escolastica123"
}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   bind address (default from Config)
//	-d string   sqlite database file (default from Config)
//	-u string   admin username (default from Config)
//	-p string   admin password (default from Config)
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-u", "-p"})

	fs := flag.NewFlagSet("stubserver", flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "bind address")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "sqlite database file")
	fs.StringVar(&cfg.AdminUser, "u", cfg.AdminUser, "admin username")
	fs.StringVar(&cfg.AdminPassword, "p", cfg.AdminPassword, "admin password")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

// LoadConfig builds a Config by applying defaults and overlaying
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)
	return cfg
}
