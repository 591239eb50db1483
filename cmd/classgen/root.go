package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errReported is returned by commands that already printed their
// diagnostics.
var errReported = errors.New("errors reported")

// app holds the state shared by every command of one invocation.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stdout: stdout, stderr: stderr, logger: zerolog.Nop()}
	root := &cobra.Command{
		Use:           "classgen",
		Short:         "Compile TypeScript enum declarations into JVM class files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./classgen.yaml)")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.Bool("no-color", false, "disable colored output")

	root.AddCommand(a.buildCmd(), a.inspectCmd(), a.docsCmd(), a.versionCmd())
	return root
}

// setup merges flags, CLASSGEN_* environment variables and the config file,
// in that order of precedence, and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("CLASSGEN")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := a.readConfig(); err != nil {
		return err
	}

	if a.v.GetBool("no-color") || !isTerminal(a.stdout) {
		color.NoColor = true
	}
	logger, err := newLogger(a.stderr, a.v.GetString("log-level"), color.NoColor)
	if err != nil {
		return err
	}
	a.logger = logger
	if file := a.v.ConfigFileUsed(); file != "" {
		a.logger.Debug().Str("config", file).Msg("loaded config file")
	}
	return nil
}

func (a *app) readConfig() error {
	if file := a.v.GetString("config"); file != "" {
		path, err := homedir.Expand(file)
		if err != nil {
			return err
		}
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
		return nil
	}
	a.v.SetConfigName("classgen")
	a.v.SetConfigType("yaml")
	a.v.AddConfigPath(".")
	if home, err := homedir.Dir(); err == nil {
		a.v.AddConfigPath(filepath.Join(home, ".config", "classgen"))
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func (a *app) outputFormat() (string, error) {
	format := strings.ToLower(a.v.GetString("output"))
	switch format {
	case "", "text":
		return "text", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}
