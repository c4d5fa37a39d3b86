package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sales-ledger-reconciler/cmd/reconciler/config"
	"sales-ledger-reconciler/internal/matcher"
	"sales-ledger-reconciler/internal/parsers"
	"sales-ledger-reconciler/internal/reconciler"
	"sales-ledger-reconciler/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runSettings is everything a processing command needs, resolved from flags, the
// config file and the environment.
type runSettings struct {
	catalog    string
	inputs     []string
	parse      *parsers.ParseConfig
	reconciler *reconciler.Config
	report     *reporter.ReportConfig
}

// addRunFlags registers the flags shared by reconcile and aggregate.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("catalog", "c", "", "path to the sales catalog (.xlsx or .csv, required)")
	cmd.Flags().StringSliceP("files", "i", []string{}, "ledger files or directories, comma-separated (required)")
	cmd.Flags().StringP("output-dir", "o", ".", "directory for output files")
	cmd.Flags().StringP("output-format", "f", string(reporter.FormatXLSX), "output format: xlsx, csv, json")
	cmd.Flags().Bool("highlight", true, "highlight derived column headers in xlsx output")
	cmd.Flags().String("rules-dir", "", "directory with <ruleset>.yaml rule-table overrides")
	cmd.Flags().Int("concurrency", parsers.DefaultConcurrency, "number of ledger files processed at once")
	cmd.Flags().String("tie-break", string(matcher.TieBreakCatalogOrder), "catalog record chosen on identifier ties: catalog_order, catalog_id")
	cmd.Flags().String("delimiter", ",", "csv input delimiter")
	cmd.Flags().String("sheet", "", "workbook sheet to read (default: first sheet)")
}

// bindRunFlags binds the running command's flags. Binding happens per invocation
// because reconcile and aggregate share flag names.
func bindRunFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// loadRunSettings validates the shared flags and builds the typed configurations.
// Positional arguments are treated as additional inputs.
func loadRunSettings(args []string) (*runSettings, error) {
	catalog := viper.GetString("catalog")
	inputs := append(viper.GetStringSlice("files"), args...)

	if catalog == "" {
		return nil, fmt.Errorf("catalog is required")
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("at least one ledger file is required")
	}
	if err := validateFileExists(catalog, "catalog file"); err != nil {
		return nil, err
	}

	files, err := config.ExpandInputs(inputs)
	if err != nil {
		return nil, err
	}

	parseConfig, err := config.CreateParseConfig(viper.GetString("delimiter"), viper.GetString("sheet"))
	if err != nil {
		return nil, err
	}

	matchingConfig, err := config.CreateMatchingConfig(viper.GetString("tie-break"), viper.GetInt("matching.sentinel_prefix_length"))
	if err != nil {
		return nil, err
	}

	catalogConfig, err := config.LoadCatalogConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	concurrency := viper.GetInt("concurrency")
	if concurrency < 0 {
		return nil, fmt.Errorf("concurrency cannot be negative")
	}
	reconcilerConfig, err := config.CreateReconcilerConfig(concurrency, viper.GetString("rules-dir"), matchingConfig, catalogConfig)
	if err != nil {
		return nil, fmt.Errorf("invalid reconciler configuration: %w", err)
	}

	highlight := true
	if viper.IsSet("highlight") {
		highlight = viper.GetBool("highlight")
	}
	reportConfig, err := config.CreateReportConfig(viper.GetString("output-format"), viper.GetString("output-dir"), highlight)
	if err != nil {
		return nil, fmt.Errorf("invalid output configuration: %w", err)
	}

	return &runSettings{
		catalog:    catalog,
		inputs:     files,
		parse:      parseConfig,
		reconciler: reconcilerConfig,
		report:     reportConfig,
	}, nil
}

// newService builds the reconciliation service for a run.
func (s *runSettings) newService() (*reconciler.Service, error) {
	return reconciler.NewService(parsers.NewFileReader(s.parse), nil, s.reconciler)
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

// signalContext is canceled on interrupt so in-flight files stop at the next check.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
