package cmd

import (
	"fmt"

	"sales-ledger-reconciler/internal/reconciler"
	"sales-ledger-reconciler/internal/reporter"
	"sales-ledger-reconciler/pkg/errors"
	"sales-ledger-reconciler/pkg/logger"

	"github.com/spf13/cobra"
)

var aggregateSettings *runSettings

// aggregateCmd represents the aggregate command
var aggregateCmd = &cobra.Command{
	Use:   "aggregate [ledger files...]",
	Short: "Combine other-revenue ledgers into one annotated table",
	Long: `Aggregate runs the other-revenue rule-set over every given ledger as a single
table. File names are not used for dispatch. Files that cannot be read or lack a
required column are skipped with a warning; the remaining rows are matched against
the catalog with the long-form join and written as "매출_기타매출_통합".

Examples:
  reconciler aggregate --catalog catalog.xlsx --files 기타매출/
  reconciler aggregate -c catalog.xlsx 2024_01_기타.xlsx 2024_02_기타.xlsx -f csv`,

	Args:    cobra.ArbitraryArgs,
	PreRunE: validateAggregateFlags,
	RunE:    runAggregate,
}

func init() {
	rootCmd.AddCommand(aggregateCmd)

	addRunFlags(aggregateCmd)
}

func validateAggregateFlags(cmd *cobra.Command, args []string) error {
	if err := bindRunFlags(cmd); err != nil {
		return err
	}

	settings, err := loadRunSettings(args)
	if err != nil {
		return err
	}
	aggregateSettings = settings
	return nil
}

func runAggregate(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	settings := aggregateSettings
	log := logger.WithComponent("cli")

	service, err := settings.newService()
	if err != nil {
		return err
	}

	catalog, err := service.LoadCatalog(ctx, settings.catalog)
	if err != nil {
		return err
	}

	result, skipped, err := service.ProcessAggregate(ctx, catalog, settings.inputs)
	out := cmd.OutOrStdout()
	if len(skipped) > 0 {
		fmt.Fprintf(out, "=== 건너뛴 파일 ===\n%s\n\n", errors.FormatErrorsForUser(skipped))
	}
	if err != nil {
		return err
	}

	generator, err := reporter.NewSafeReportGenerator(settings.report, log)
	if err != nil {
		return err
	}

	path, err := generator.WriteFileSafely(reporter.AggregateDocument(result))
	if err != nil {
		return err
	}

	generator.PrintSummary(out, []*reconciler.Result{result})
	generator.PrintWritten(out, []string{path})
	return nil
}
