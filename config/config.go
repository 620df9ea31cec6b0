// Package config loads runtime configuration shared by the solver's
// command-line entry points: table sizing, the opening-book path, and
// logging verbosity. Values come from flags or GOPHERFOUR_-prefixed
// environment variables via spf13/viper: a flag given on the command
// line wins over the environment variable, which wins over the flag's
// default. No config file is read.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings every cmd/* entry point needs.
type Config struct {
	TTLogSize int    // log2 of the transposition table's slot count; 0 auto-sizes from system memory.
	BookPath  string // path to an opening-book file; empty disables the book.
	Debug     bool   // enables debug-level logging.
	Weak      bool   // weak-solve mode: only the sign of the score is computed.
}

// NewFlagSet returns a pflag.FlagSet pre-populated with the shared
// flags every entry point understands. Callers that need extra,
// command-specific flags (cmd/solve's -analyze, say) should register
// them on the returned set before calling LoadFromFlagSet, so every
// flag is parsed in a single pass.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Int("ttable-log-size", 0, "log2 of the transposition table size; 0 auto-sizes from system memory")
	fs.String("book-path", "", "path to a precomputed opening book file")
	fs.Bool("debug", false, "enable debug-level logging")
	fs.Bool("weak", false, "weak-solve mode (sign of the score only)")
	return fs
}

// LoadFromFlagSet parses args into fs and builds a Config from the
// shared flags NewFlagSet registered, falling back to
// GOPHERFOUR_-prefixed environment variables for anything not set on
// the command line.
func LoadFromFlagSet(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: parsing flags: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("GOPHERFOUR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: binding flags: %w", err)
	}

	return &Config{
		TTLogSize: v.GetInt("ttable-log-size"),
		BookPath:  v.GetString("book-path"),
		Debug:     v.GetBool("debug"),
		Weak:      v.GetBool("weak"),
	}, nil
}

// Load is LoadFromFlagSet with only the shared flags available; most
// entry points that don't need extra flags of their own call this.
func Load(args []string) (*Config, error) {
	return LoadFromFlagSet(NewFlagSet("gopherfour"), args)
}
