package main

import (
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-boids/common"
	"github.com/Carmen-Shannon/oxy-boids/engine"
	"github.com/Carmen-Shannon/oxy-boids/engine/config"
	"github.com/spf13/cobra"
)

// flags are the command-line overrides applied on top of the config file.
type flags struct {
	configPath string
	msaa       uint32
	fish       int
	logLevel   string
}

func newRootCommand() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "aquarium",
		Short:         "Render an aquarium of instanced fish",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			if err := installLogger(cfg.Log); err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	cmd.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "TOML config file (defaults are used when empty)")
	cmd.PersistentFlags().Uint32Var(&f.msaa, "msaa", 0, "MSAA sample count: 1, 4, 8 or 16")
	cmd.PersistentFlags().IntVar(&f.fish, "fish", 0, "number of fish")
	cmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newConfigCommand(f))
	return cmd
}

// newConfigCommand prints the effective configuration, which doubles as a config file template.
func newConfigCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			return cfg.Write(cmd.OutOrStdout())
		},
	}
}

// load reads the config file and applies the flags the user set.
func (f *flags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("msaa") {
		cfg.Renderer.MSAA = f.msaa
	}
	if cmd.Flags().Changed("fish") {
		cfg.Scene.FishCount = f.fish
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	return cfg, cfg.Validate()
}

func installLogger(cfg config.LogConfig) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func run(cmd *cobra.Command, cfg config.Config) error {
	e, err := engine.NewEngine(cmd.Context(), cfg)
	if err != nil {
		common.Logger().Error("startup failed", "error", err)
		return err
	}
	defer e.Release()

	if err := e.Run(); err != nil {
		common.Logger().Error("engine stopped", "error", err)
		return err
	}
	return nil
}
