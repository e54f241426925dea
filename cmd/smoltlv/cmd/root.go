package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/logicossoftware/go-smoltlv"
)

type rootOpts struct {
	cfgFile string
	debug   bool
	hexIn   bool
}

// app is the state shared by the subcommands of one root command.
type app struct {
	opts rootOpts
	v    *viper.Viper
}

var longRootCmdDescription = `smoltlv converts, inspects and validates SmolTLV documents.

Every SmolTLV item is a 1-byte type tag, a 24-bit big-endian length and the
value bytes. Documents can be built from JSON, YAML or CBOR, decoded back,
queried by path and wrapped in compressed envelopes.

Settings can also come from a config file ($HOME/.smoltlv.yaml by default)
or from SMOLTLV_* environment variables, e.g. SMOLTLV_COMPRESSION=lz4.
`

// NewRootCmd builds the command tree with its own configuration state.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "smoltlv",
		Short:         "A tool to build, inspect and package SmolTLV documents.",
		Long:          longRootCmdDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.opts.cfgFile, "config", "", "config file of smoltlv (default is $HOME/.smoltlv.yaml)")
	flags.BoolVarP(&a.opts.debug, "debug", "d", false, "turn on debug mode")
	flags.BoolVar(&a.opts.hexIn, "hex", false, "read input as hex text; whitespace is ignored")
	flags.Bool("allow-unknown", false, "accept items with undefined type tags")
	flags.Int("max-depth", 0, "maximum container nesting, 0 for the library default")
	flags.Int("max-document-size", 0, "maximum document size in bytes, 0 for the library default")
	a.bindFlags(flags, "allow-unknown", "max-depth", "max-document-size")

	rootCmd.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newDumpCmd(a),
		newValidateCmd(a),
		newGetCmd(a),
		newPackCmd(a),
		newUnpackCmd(a),
		NewVersionCmd(),
	)
	rootCmd.DisableAutoGenTag = true
	return rootCmd
}

// Execute runs the command line and exits with the status code of the
// error, if any.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		logrus.Errorf("smoltlv: %v", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	return int(smoltlv.StatusOf(err))
}

// initConfig reads in config file and ENV variables if set.
func (a *app) initConfig() error {
	if a.opts.debug {
		logrus.SetLevel(logrus.DebugLevel)
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to init library logger: %w", err)
		}
		smoltlv.SetLogger(l)
	}

	a.v.SetEnvPrefix("SMOLTLV")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.opts.cfgFile != "" {
		a.v.SetConfigFile(a.opts.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			logrus.Debugf("no home directory, skipping config file: %v", err)
			return nil
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigName(".smoltlv")
		a.v.SetConfigType("yaml")
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	logrus.Debugf("using config file %s", a.v.ConfigFileUsed())
	return nil
}
