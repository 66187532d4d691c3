package cmd

import (
	"os"

	"github.com/jmgilman/go/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-projectclocks/internal/config"
)

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:          "projectclocks",
	Short:        "ProjectClocks time tracking API",
	Long:         "Serves the ProjectClocks entities over HTTP from write-through in-memory caches.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("database-driver", "", "database driver: sqlite or postgres")
	rootCmd.PersistentFlags().String("database-dsn", "", "database connection string")
	rootCmd.PersistentFlags().String("database-store", "", "store backend: bun or repository")
	rootCmd.PersistentFlags().String("log-level", "", "log level")

	v.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("database-driver"))
	v.BindPFlag("database.dsn", rootCmd.PersistentFlags().Lookup("database-dsn"))
	v.BindPFlag("database.store", rootCmd.PersistentFlags().Lookup("database-store"))
	v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "log level %q", cfg.Level)
	}
	zc.Level = level

	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "build logger")
	}
	return logger, nil
}
