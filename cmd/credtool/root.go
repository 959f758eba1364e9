package main

import (
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hasbyte1/go-credentials/config"
	"github.com/hasbyte1/go-credentials/credential"
	"github.com/hasbyte1/go-credentials/hashing"
)

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	out      io.Writer
	cfg      *config.Config
	logger   *zap.Logger
	registry *hashing.Registry
	options  []credential.Option
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	var cfgPath string

	root := &cobra.Command{
		Use:           "credtool",
		Short:         "Encode, verify and migrate password credentials",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cfgPath)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to the YAML configuration file")

	root.AddCommand(
		newStrategiesCmd(a),
		newEncodeCmd(a),
		newVerifyCmd(a),
		newValidateCmd(a),
		newCanUpgradeCmd(a),
		newAccountCmd(a),
	)
	return root
}

func (a *app) load(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	reg, opts, err := cfg.Credentials.Build(logger)
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.registry, a.options = cfg, logger, reg, opts
	return nil
}

// strategy returns the strategy registered under id, or the default one when
// id is empty.
func (a *app) strategy(id string) (string, hashing.Strategy, error) {
	if id == "" {
		id = a.registry.DefaultName()
	}
	s, ok := a.registry.Get(id)
	if !ok {
		return "", nil, errors.Wrapf(hashing.ErrNoStrategyAvailable, "strategy %q", id)
	}
	return id, s, nil
}
