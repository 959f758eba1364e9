// Package config loads the credential configuration from YAML and the
// environment and turns it into a strategy registry, service options, a
// logger and a record store.
package config

import (
	"os"
	"strings"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Config is the root of the configuration file.
type Config struct {
	Log         Log         `json:"log" yaml:"log"`
	Credentials Credentials `json:"credentials" yaml:"credentials"`
	Store       Store       `json:"store" yaml:"store"`
}

type Log struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

// Credentials configures the strategy registry and the service.
type Credentials struct {
	DefaultStrategy      string              `json:"defaultStrategy" yaml:"defaultStrategy"`
	AutoUpgrade          bool                `json:"autoUpgrade" yaml:"autoUpgrade"`
	RehashOnCostChange   bool                `json:"rehashOnCostChange" yaml:"rehashOnCostChange"`
	AllowDegradedEntropy bool                `json:"allowDegradedEntropy" yaml:"allowDegradedEntropy"`
	ResetNamespace       string              `json:"resetNamespace" yaml:"resetNamespace"`
	Strategies           map[string]Strategy `json:"strategies" yaml:"strategies"`
}

// Strategy is one entry of credentials.strategies, keyed by strategy id.
type Strategy struct {
	Implementation       string `json:"implementation" yaml:"implementation"`
	WorkFactor           int    `json:"workFactor" yaml:"workFactor"`
	Digest               string `json:"digest" yaml:"digest"`
	MinLength            int    `json:"minLength" yaml:"minLength"`
	MaxLength            int    `json:"maxLength" yaml:"maxLength"`
	MinDigits            int    `json:"minDigits" yaml:"minDigits"`
	MinUpperCaseLetters  int    `json:"minUpperCaseLetters" yaml:"minUpperCaseLetters"`
	MinLowerCaseLetters  int    `json:"minLowerCaseLetters" yaml:"minLowerCaseLetters"`
	MinSpecialCharacters int    `json:"minSpecialCharacters" yaml:"minSpecialCharacters"`
	SpecialCharacterSet  string `json:"specialCharacterSet" yaml:"specialCharacterSet"`
	DaysValid            int    `json:"daysValid" yaml:"daysValid"`
}

// Store selects the record store used by the command line tool.
type Store struct {
	// Driver is one of "memory", "redis" or "sqlite".
	Driver string     `json:"driver" yaml:"driver"`
	DSN    string     `json:"dsn" yaml:"dsn"`
	Redis  RedisStore `json:"redis" yaml:"redis"`
}

type RedisStore struct {
	Addr     string `json:"addr" yaml:"addr"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	Prefix   string `json:"prefix" yaml:"prefix"`
}

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	return &Config{
		Log: Log{Level: "info"},
		Credentials: Credentials{
			DefaultStrategy: "bcrypt",
			AutoUpgrade:     true,
		},
		Store: Store{Driver: "memory"},
	}
}

// DefaultStrategies is used when the file configures no strategy: bcrypt
// as default plus the legacy digest for existing records.
func DefaultStrategies() map[string]Strategy {
	return map[string]Strategy{
		"bcrypt": {Implementation: "bcrypt", WorkFactor: 12, MinLength: 6},
		"legacy": {Implementation: "legacy-md5"},
	}
}

// Load reads the YAML file at path, then applies environment overrides.
// An empty path loads only defaults and environment.
//
// Environment variables are mapped onto existing keys segment by segment,
// ignoring case and punctuation: CREDENTIALS_DEFAULTSTRATEGY sets
// credentials.defaultStrategy and
// CREDENTIALS_STRATEGIES_BCRYPT_WORKFACTOR sets the bcrypt work factor.
// Variables that do not start with a known top-level key are ignored.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, "config file %s", path)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config %s failed", path)
		}
	}

	existing := k.Raw()
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, v string) (string, any) {
			return canonicalizeEnvKey(key, existing), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config failed")
	}

	if len(cfg.Credentials.Strategies) == 0 {
		cfg.Credentials.Strategies = DefaultStrategies()
	}
	return cfg, nil
}

// topLevelKeys are the roots an environment variable may address.
var topLevelKeys = map[string]string{
	"log":         "log",
	"credentials": "credentials",
	"store":       "store",
}

// canonicalizeEnvKey maps CREDENTIALS_DEFAULTSTRATEGY to
// credentials.defaultStrategy by matching each segment against the keys
// already loaded.  Unknown roots map to "", which koanf skips.
func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	if len(segments) < 2 {
		return ""
	}
	root, ok := topLevelKeys[segments[0]]
	if !ok {
		return ""
	}

	canonical := []string{root}
	current, _ := existing[root].(map[string]any)
	for _, segment := range segments[1:] {
		if segment == "" {
			continue
		}
		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}
	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}
	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}
		child, _ := value.(map[string]any)
		return key, child, true
	}
	return "", nil, false
}

func normalizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
