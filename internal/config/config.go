// Package config loads sentree configuration from TOML files. Every key is
// optional; call FillDefaults on a loaded Config to populate whatever the file
// left out, then Validate before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/sentree/internal/generate"
	"github.com/dekarrin/sentree/internal/grammar"
	"github.com/dekarrin/sentree/internal/parse"
	"github.com/dekarrin/sentree/internal/render"
)

// DefaultFile is the config file read when none is given explicitly.
const DefaultFile = "sentree.toml"

const (
	DefaultGrammarFile   = "output/grammar.txt"
	DefaultMode          = "best-effort"
	DefaultTimeout       = 5 * time.Second
	DefaultStyle         = "arrow"
	DefaultWidth         = 80
	DefaultSampleCount   = 10000
	DefaultListenAddress = "localhost:8080"
	DefaultAdminUser     = "admin"
)

// Duration is a time.Duration that is written in TOML as a string such as
// "5s" or "250ms".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the full configuration of sentree.
type Config struct {
	Grammar  Grammar  `toml:"grammar"`
	Parse    Parse    `toml:"parse"`
	Output   Output   `toml:"output"`
	Generate Generate `toml:"generate"`
	Server   Server   `toml:"server"`
}

// Grammar says where to get the grammar and which symbol starts it.
type Grammar struct {
	File  string `toml:"file"`
	Start string `toml:"start"`
}

// Parse holds the settings for parsing sentences.
type Parse struct {
	// Mode is "strict" or "best-effort".
	Mode string `toml:"mode"`

	MaxDepth       int `toml:"max_depth"`
	MaxDerivations int `toml:"max_derivations"`

	// Timeout bounds the time spent parsing one sentence. Set to a negative
	// duration to disable it.
	Timeout Duration `toml:"timeout"`

	// NFC normalizes sentences to Unicode NFC before tokenizing them.
	NFC bool `toml:"nfc"`
}

// Output holds the settings for rendering trees.
type Output struct {
	// Style is "arrow" or "outline".
	Style string `toml:"style"`

	// Separator is written after each rendered tree. If empty, the default
	// separator of the style is used.
	Separator string `toml:"separator"`

	ElidePreterminals bool `toml:"elide_preterminals"`

	// Width is the column width that interactive output is wrapped to.
	Width int `toml:"width"`
}

// Generate holds the settings for the sentence generator.
type Generate struct {
	Count int `toml:"count"`

	// Seed seeds the random source. Zero means a seed is chosen from the
	// current time.
	Seed int64 `toml:"seed"`

	MaxExpansions int `toml:"max_expansions"`
}

// Server holds the settings for the parse service.
type Server struct {
	Listen string `toml:"listen"`

	// DB is written "inmem" or "sqlite:DIR".
	DB Store `toml:"db"`

	AdminUser     string `toml:"admin_user"`
	AdminPassword string `toml:"admin_password"`

	// TokenSecret signs API tokens. Usually given by flag or environment
	// rather than in the file.
	TokenSecret string `toml:"token_secret"`
}

// Load reads the Config in the TOML file at path. Keys that are not part of
// the config are reported as an error. The returned Config has not had its
// defaults filled.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%q: reading from disk: %w", path, err)
	}

	cfg, err := Unmarshal(data)
	if err != nil {
		return Config{}, fmt.Errorf("%q: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault is like Load but a missing file is not an error; the zero
// Config is returned instead.
func LoadDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}

// Unmarshal decodes TOML config text.
func Unmarshal(data []byte) (Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode TOML: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i := range undecoded {
			keys[i] = undecoded[i].String()
		}
		return Config{}, fmt.Errorf("unknown key(s): %s", strings.Join(keys, ", "))
	}

	return cfg, nil
}

// FillDefaults returns a new Config identical to cfg but with unset values
// set to their defaults.
func (cfg Config) FillDefaults() Config {
	newCFG := cfg

	if newCFG.Grammar.File == "" {
		newCFG.Grammar.File = DefaultGrammarFile
	}
	if newCFG.Grammar.Start == "" {
		newCFG.Grammar.Start = grammar.DefaultStart
	}

	if newCFG.Parse.Mode == "" {
		newCFG.Parse.Mode = DefaultMode
	}
	if newCFG.Parse.MaxDepth == 0 {
		newCFG.Parse.MaxDepth = parse.DefaultMaxDepth
	}
	if newCFG.Parse.MaxDerivations == 0 {
		newCFG.Parse.MaxDerivations = parse.DefaultMaxDerivations
	}
	if newCFG.Parse.Timeout == 0 {
		newCFG.Parse.Timeout = Duration(DefaultTimeout)
	}

	if newCFG.Output.Style == "" {
		newCFG.Output.Style = DefaultStyle
	}
	if newCFG.Output.Width == 0 {
		newCFG.Output.Width = DefaultWidth
	}

	if newCFG.Generate.Count == 0 {
		newCFG.Generate.Count = DefaultSampleCount
	}
	if newCFG.Generate.MaxExpansions == 0 {
		newCFG.Generate.MaxExpansions = generate.DefaultMaxExpansions
	}

	if newCFG.Server.Listen == "" {
		newCFG.Server.Listen = DefaultListenAddress
	}
	if newCFG.Server.DB.Kind == "" {
		newCFG.Server.DB = DefaultStore
	}
	if newCFG.Server.AdminUser == "" {
		newCFG.Server.AdminUser = DefaultAdminUser
	}

	return newCFG
}

// Validate returns an error if the Config has invalid field values set. Empty
// and unset values are considered invalid; if defaults are intended to be used,
// call Validate on the return value of FillDefaults.
//
// Of the server settings only the store is checked here; the server checks
// its credentials itself when it starts.
func (cfg Config) Validate() error {
	if cfg.Grammar.File == "" {
		return fmt.Errorf("grammar.file: must not be empty")
	}
	if cfg.Grammar.Start == "" {
		return fmt.Errorf("grammar.start: must not be empty")
	}

	if _, err := parse.ParseMode(cfg.Parse.Mode); err != nil {
		return fmt.Errorf("parse.mode: %w", err)
	}
	if cfg.Parse.MaxDepth < 1 {
		return fmt.Errorf("parse.max_depth: must be at least 1 but is %d", cfg.Parse.MaxDepth)
	}
	if cfg.Parse.MaxDerivations < 1 {
		return fmt.Errorf("parse.max_derivations: must be at least 1 but is %d", cfg.Parse.MaxDerivations)
	}

	if _, err := render.ParseStyle(cfg.Output.Style); err != nil {
		return fmt.Errorf("output.style: %w", err)
	}
	if cfg.Output.Width < 2 {
		return fmt.Errorf("output.width: must be at least 2 but is %d", cfg.Output.Width)
	}

	if cfg.Generate.Count < 0 {
		return fmt.Errorf("generate.count: must not be negative but is %d", cfg.Generate.Count)
	}
	if cfg.Generate.MaxExpansions < 1 {
		return fmt.Errorf("generate.max_expansions: must be at least 1 but is %d", cfg.Generate.MaxExpansions)
	}

	if err := cfg.Server.DB.Validate(); err != nil {
		return fmt.Errorf("server.db: %w", err)
	}

	return nil
}

// Mode returns the configured parse mode. It must only be called on a Config
// that passes Validate.
func (cfg Config) Mode() parse.Mode {
	m, _ := parse.ParseMode(cfg.Parse.Mode)
	return m
}

// Style returns the configured render style. It must only be called on a
// Config that passes Validate.
func (cfg Config) Style() render.Style {
	s, _ := render.ParseStyle(cfg.Output.Style)
	return s
}

// Separator returns the text to write after each rendered tree.
func (cfg Config) Separator() string {
	if cfg.Output.Separator != "" {
		return cfg.Output.Separator
	}
	return cfg.Style().Separator()
}

// ParseOptions returns the limits for a parse Session.
func (cfg Config) ParseOptions() parse.Options {
	return parse.Options{
		MaxDepth:       cfg.Parse.MaxDepth,
		MaxDerivations: cfg.Parse.MaxDerivations,
	}
}

// Timeout returns the per-sentence parse time limit. A zero Duration means
// there is no limit.
func (cfg Config) Timeout() time.Duration {
	if cfg.Parse.Timeout < 0 {
		return 0
	}
	return time.Duration(cfg.Parse.Timeout)
}
