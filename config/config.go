// Package config merges command-line flags, IPLIST_* environment variables
// and an optional configuration file.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/weaveworks/iplist/output"
)

type Config struct {
	Add      []string `mapstructure:"add"`
	Del      []string `mapstructure:"del"`
	AddLists []string `mapstructure:"add-list"`
	AddPaths []string `mapstructure:"add-path"`
	DelLists []string `mapstructure:"del-list"`
	DelPaths []string `mapstructure:"del-path"`

	Output      string `mapstructure:"output"`
	Format      string `mapstructure:"format"`
	JSON        bool   `mapstructure:"json"`
	CSV         bool   `mapstructure:"csv"`
	TXT         bool   `mapstructure:"txt"`
	YAML        bool   `mapstructure:"yaml"`
	Stdout      bool   `mapstructure:"stdout"`
	Sort        bool   `mapstructure:"sort"`
	Merge       bool   `mapstructure:"merge"`
	Verbose     bool   `mapstructure:"verbose"`
	Quiet       bool   `mapstructure:"quiet"`
	LogLevel    string `mapstructure:"log-level"`
	Workers     int    `mapstructure:"workers"`
	MetricsFile string `mapstructure:"metrics-file"`
}

const EnvPrefix = "IPLIST"

// AddFlags registers every option as a flag.
func AddFlags(flags *pflag.FlagSet) {
	flags.StringSliceP("add", "a", nil, "network to add")
	flags.StringSliceP("del", "d", nil, "network to subtract")
	flags.StringSlice("add-list", nil, "file with networks to add")
	flags.StringSlice("add-path", nil, "path inside objects to add, if file is JSON or YAML")
	flags.StringSlice("del-list", nil, "file with networks to subtract")
	flags.StringSlice("del-path", nil, "path inside objects to subtract, if file is JSON or YAML")

	flags.StringP("output", "o", "", "output file")
	flags.String("format", "", "output format (txt, csv, json, yaml); default from the output file name")
	flags.Bool("json", false, "output in JSON format")
	flags.Bool("csv", false, "output in CSV format")
	flags.Bool("txt", false, "output in TXT format")
	flags.Bool("yaml", false, "output in YAML format")
	flags.Bool("stdout", false, "write the formatted result to stdout")
	flags.BoolP("sort", "s", false, "sort output and group it by address class")

	flags.BoolP("merge", "m", false, "merge networks if possible")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.BoolP("quiet", "q", false, "quiet output")
	flags.String("log-level", "info", "logging level (debug, info, warning, error)")
	flags.Int("workers", 1, "added networks to process concurrently")
	flags.String("metrics-file", "", "write prometheus metrics to this file")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log-level", "info")
	v.SetDefault("workers", 1)
}

// Load builds the configuration. Flags that were set win over the environment,
// which wins over the file at path (if any), which wins over defaults.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, errors.Wrap(err, "binding flags")
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return &config, config.Validate()
}

func (c *Config) Validate() error {
	var chosen []string
	for name, set := range map[string]bool{"json": c.JSON, "csv": c.CSV, "txt": c.TXT, "yaml": c.YAML} {
		if set {
			chosen = append(chosen, name)
		}
	}
	switch {
	case len(chosen) > 1:
		return errors.Errorf("only one output format may be chosen, got %s", strings.Join(chosen, ", "))
	case len(chosen) == 1:
		c.Format = chosen[0]
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Verbose && c.Quiet {
		return errors.New("verbose and quiet are mutually exclusive")
	}
	return nil
}

// Level is the log level to run at.
func (c *Config) Level() string {
	switch {
	case c.Verbose:
		return "debug"
	case c.Quiet:
		return "error"
	}
	return c.LogLevel
}
