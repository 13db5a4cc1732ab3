package main

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zappabad/candleview/internal/app"
)

var RootCmd = &cobra.Command{
	Use:   "candleview",
	Short: "interactive OHLC candlestick charts",
	Long:  "candleview draws daily OHLC bars as candlesticks in the terminal or to PNG files.",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "config file (default ./candleview.yaml or $HOME/.candleview/candleview.yaml)")
	RootCmd.PersistentFlags().String("env", ".env", "dotenv file loaded before the environment is read")
	RootCmd.PersistentFlags().Bool("debug", false, "debug logging")
	RootCmd.PersistentFlags().String("log-file", "", "write logs to a rotating file")
}

// bindFlags maps command line flags onto config keys so that a flag given
// on the command line wins over the file and the environment.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"log.file": "log-file",
	}
	for key, name := range bindings {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return errors.Wrapf(err, "bind --%s", name)
			}
		}
	}
	return nil
}

// loadConfig reads the configuration for cmd from its flags, the dotenv
// file, the environment and the config file.
func loadConfig(cmd *cobra.Command) (app.Config, error) {
	flags := cmd.Flags()
	v := viper.New()
	if err := bindFlags(v, flags); err != nil {
		return app.Config{}, err
	}

	configFile, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env")
	cfg, err := app.Load(v, envFile, configFile)
	if err != nil {
		return app.Config{}, err
	}

	if debug, _ := flags.GetBool("debug"); debug {
		cfg.Log.Level = logrus.DebugLevel.String()
	}
	return cfg, nil
}
