package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/weaveworks/iplist/calc"
	"github.com/weaveworks/iplist/common"
	"github.com/weaveworks/iplist/config"
	"github.com/weaveworks/iplist/metrics"
	"github.com/weaveworks/iplist/net/address"
	"github.com/weaveworks/iplist/output"
	"github.com/weaveworks/iplist/reader"
)

var version = "unreleased"

func handleError(err error) { common.CheckFatal(err) }

// collect builds one side of the calculation from inline specifiers and list files.
func collect(name string, specifiers, lists, paths []string) (*calc.Set, error) {
	set := calc.NewSet(name)
	set.AddSpecifiers(specifiers...)
	for _, path := range lists {
		if err := set.AddFrom(reader.ForFile(path, paths)); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func run(cfg *config.Config, stdout io.Writer) error {
	add, err := collect("add", cfg.Add, cfg.AddLists, cfg.AddPaths)
	if err != nil {
		return err
	}
	sub, err := collect("sub", cfg.Del, cfg.DelLists, cfg.DelPaths)
	if err != nil {
		return err
	}
	if n := len(add.Errors()) + len(sub.Errors()); n > 0 {
		common.Log.WithField("count", n).Debugf("ignored specifiers:\n%s",
			common.ErrorMessages(append(add.Errors(), sub.Errors()...)))
	}

	if !cfg.Quiet {
		output.PrintInputs(stdout, add.Blocks(), sub.Blocks())
	}

	result, err := calc.New(calc.Options{
		Merge:   cfg.Merge,
		Sort:    cfg.Sort,
		Workers: cfg.Workers,
	}).Calculate(add.Blocks(), sub.Blocks())
	if err != nil {
		return err
	}

	if !cfg.Quiet {
		fmt.Fprintln(stdout, "---")
		if cfg.Sort {
			output.PrintGrouped(stdout, result, output.NewClassifier())
		} else {
			output.PrintFlat(stdout, result)
		}
		if cfg.Verbose {
			output.PrintSummary(stdout, result)
		}
	}

	return emit(cfg, stdout, result)
}

func emit(cfg *config.Config, stdout io.Writer, result []address.CIDR) error {
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	if cfg.Output != "" {
		if err := output.WriteFile(cfg.Output, format, result); err != nil {
			return err
		}
		common.Log.WithField("file", cfg.Output).Infof("wrote %d networks", len(result))
	}
	if cfg.Stdout {
		if err := output.Write(stdout, format, result); err != nil {
			return errors.Wrap(err, "writing to stdout")
		}
	}
	if cfg.MetricsFile != "" {
		common.CheckWarn(metrics.WriteTextfile(cfg.MetricsFile))
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "iplist",
		Short:         "Add and subtract lists of IP networks",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := common.SetLogLevel(cfg.Level()); err != nil {
				return err
			}
			common.SetLogOutput(cmd.ErrOrStderr())
			common.Log.Debugf("Starting iplist %s", version)
			return run(cfg, cmd.OutOrStdout())
		},
	}

	config.AddFlags(rootCmd.Flags())
	rootCmd.Flags().StringVar(&configFile, "config", "", "configuration file")
	rootCmd.MarkFlagsMutuallyExclusive("json", "csv", "txt", "yaml")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	return rootCmd
}

func main() {
	handleError(newRootCmd().Execute())
}
