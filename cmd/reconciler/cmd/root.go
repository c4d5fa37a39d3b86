package cmd

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"sales-ledger-reconciler/cmd/reconciler/config"
	"sales-ledger-reconciler/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	envFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Sales ledger reconciliation tool",
	Long: `Reconciler attributes journal lines from monthly sales ledgers to the sales
catalog. Each ledger file is dispatched to a rule-set by a keyword in its file name
(상품매출, 원상회복비, 매도비, ...), annotated with the matched catalog ID, sale month,
duplicate and cancellation flags and category labels, and written to the output
directory as "<file>_처리본".

Examples:
  reconciler reconcile --catalog catalog.xlsx --files 2024_03_매도비.xlsx,2024_03_상품매출.xlsx
  reconciler reconcile --catalog catalog.xlsx --files ledgers/ --merge --output-dir out
  reconciler aggregate --catalog catalog.xlsx --files 기타매출/
  reconciler rulesets`,
	Version:       getVersionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional, yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file of RECONCILER_* variables, loaded when present")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text, json")
	rootCmd.PersistentFlags().String("log-file", "", "append logs to this file instead of stderr")

	// Bind flags to viper
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)

		// If a config file is specified, read it in.
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
			os.Exit(1)
		}

		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}

	if err := loadEnvFile(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading env file: %s\n", err)
		os.Exit(1)
	}

	// RECONCILER_OUTPUT_DIR sets output-dir, RECONCILER_LOG_LEVEL sets log.level.
	viper.SetEnvPrefix("RECONCILER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	initLogger()
}

// loadEnvFile exports the variables in path without overriding the environment.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func initLogger() {
	logConfig, err := config.CreateLoggerConfig(
		viper.GetString("log.level"),
		viper.GetString("log.format"),
		viper.GetString("log.file"),
		viper.GetBool("verbose"),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid logging configuration: %s\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(logConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %s\n", err)
		os.Exit(1)
	}
	logger.SetGlobalLogger(log)
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
