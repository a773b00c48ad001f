package configuration

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	commonconfig "github.com/fatjet-analysis/condorctl/internal/common/config"
)

// AddCommandlineArgs registers the flags shared by every sub-command on the root command.
func AddCommandlineArgs(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.condorctl.yaml)")
	rootCmd.PersistentFlags().String("catalogBackend", "", "dataset catalog backend: file or sqlite")
	rootCmd.PersistentFlags().String("catalogPath", "", "path of the dataset catalog file or database")
	rootCmd.PersistentFlags().String("logFile", "", "also write log entries to this file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

// persistentFlagKeys maps persistent flag names to configuration keys.
var persistentFlagKeys = map[string]string{
	"catalogBackend": "catalog.backend",
	"catalogPath":    "catalog.path",
	"logFile":        "log.file",
	"verbose":        "log.verbose",
}

// BindFlags binds the flags of the command being run to configuration keys. It has to run
// once the command is known (in PreRunE), because several commands bind the same key.
// Flags missing from cmd are skipped.
func BindFlags(cmd *cobra.Command, flagKeys map[string]string) error {
	for _, keys := range []map[string]string{persistentFlagKeys, flagKeys} {
		for flagName, key := range keys {
			flag := lookupFlag(cmd, flagName)
			if flag == nil {
				continue
			}
			if err := viper.BindPFlag(key, flag); err != nil {
				return errors.Wrapf(err, "error binding flag %s", flagName)
			}
		}
	}
	return nil
}

func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag
	}
	return cmd.InheritedFlags().Lookup(name)
}

// LoadCommandlineArgsFromConfigFile merges, in order, condorctl-defaults.yaml next to the executable
// and either cfgFile or $HOME/.condorctl.yaml into viper. Missing default files are not an error.
func LoadCommandlineArgsFromConfigFile(cfgFile string) error {
	SetDefaults()

	exePath, err := os.Executable()
	if err != nil {
		return errors.Errorf("[LoadCommandlineArgsFromConfigFile] error finding executable path: %s", err)
	}
	if err := mergeDefaultsFile(filepath.Join(filepath.Dir(exePath), "condorctl-defaults.yaml")); err != nil {
		return err
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return errors.Errorf("[LoadCommandlineArgsFromConfigFile] error getting user home directory: %s", err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".condorctl")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.MergeInConfig(); err != nil {
		switch err.(type) {
		case viper.ConfigFileNotFoundError:
			// Only occurs when looking for the optional $HOME/.condorctl.yaml
		default:
			return errors.Errorf("[LoadCommandlineArgsFromConfigFile] error reading config file %s: %s", viper.ConfigFileUsed(), err)
		}
	}
	return nil
}

// mergeDefaultsFile reads path with a separate viper instance, since a config file set on the global
// instance cannot be unset again and would shadow the $HOME search path.
func mergeDefaultsFile(path string) error {
	defaults := viper.New()
	defaults.SetConfigFile(path)
	if err := defaults.ReadInConfig(); err != nil {
		switch err.(type) {
		case viper.ConfigFileNotFoundError, *os.PathError:
			// No default config is fine
			return nil
		default:
			return errors.Errorf("[LoadCommandlineArgsFromConfigFile] error reading config file %s: %s", path, err)
		}
	}
	if err := viper.MergeConfigMap(defaults.AllSettings()); err != nil {
		return errors.Wrapf(err, "error merging %s", path)
	}
	return nil
}

// Load unmarshals the merged viper state into a Config and validates it. Validation failures are
// logged field by field before being returned.
func Load() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config, commonconfig.CustomHooks...); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling configuration")
	}
	if err := config.Validate(); err != nil {
		commonconfig.LogValidationErrors(err)
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return config, nil
}
