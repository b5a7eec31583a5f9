package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	logwriter "github.com/sirupsen/logrus/hooks/writer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/compat-todo/compat-todo/pkg/cmd/generate"
	"github.com/compat-todo/compat-todo/pkg/cmd/publish"
	"github.com/compat-todo/compat-todo/pkg/cmd/serve"
	"github.com/compat-todo/compat-todo/pkg/version"
)

const envPrefix = "COMPAT_TODO"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "compat-todo",
	Short: "Compatibility report coverage",
	Long: `compat-todo reads the issues of a game compatibility tracker and builds a static site
listing the games missing a report, or with outdated reports, for every platform`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(viper.GetString("log-level"), viper.GetString("log-file"))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error(err)
		stop()
		os.Exit(1)
	}
}

func setupLogging(level, file string) {
	logrusLevel, err := log.ParseLevel(level)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(logrusLevel)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	log.SetOutput(os.Stdout)

	if file == "" {
		return
	}
	fdLog, err := os.OpenFile(file, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		log.Errorf("error opening file %s: %v", file, err)
		return
	}
	log.AddHook(&logwriter.Hook{
		Writer:    fdLog,
		LogLevels: log.AllLevels,
	})
}

func initBindFlag(flag string) {
	err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag))
	if err != nil {
		log.Warnf("Unable to bind flag %s\n", flag)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("log-level", "info", "logging level")
	rootCmd.PersistentFlags().String("log-file", "", "copy the logs to this file")
	rootCmd.PersistentFlags().String("config", "", "config file (yaml, json or toml) with flag values")
	initBindFlag("log-level")
	initBindFlag("log-file")
	initBindFlag("config")

	rootCmd.AddCommand(generate.NewCmdGenerate())
	rootCmd.AddCommand(publish.NewCmdPublish())
	rootCmd.AddCommand(serve.NewCmdServe())
	rootCmd.AddCommand(version.NewCmdVersion())
}

// initConfig reads the .env file, the config file and ENV variables if set.
func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("Unable to load .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfg := viper.GetString("config"); cfg != "" {
		viper.SetConfigFile(cfg)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatalf("Unable to read config file %s: %v", cfg, err)
		}
	}
}
