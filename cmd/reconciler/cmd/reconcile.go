package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"sales-ledger-reconciler/internal/models"
	"sales-ledger-reconciler/internal/reconciler"
	"sales-ledger-reconciler/internal/reporter"
	"sales-ledger-reconciler/pkg/errors"
	"sales-ledger-reconciler/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var reconcileSettings *runSettings

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile [ledger files...]",
	Short: "Annotate ledger files against the sales catalog",
	Long: `Reconcile dispatches each ledger file to its rule-set by file name, attributes
its journal lines to catalog sales and writes "<file>_처리본" to the output directory.

Files whose name carries no rule-set keyword, that lack required columns, or that
contain an unparsable date are skipped and reported; the other files are still
processed.

With --merge the annotated results are joined back onto the catalog: one row per
catalog record with the count and credit sum attributed to it by each rule-set,
written as "최종_머지_결과". The merge is a summary; it does not repeat the annotated
ledger rows per catalog record. Use the "<file>_처리본" outputs for line detail.

Examples:
  # Annotate two ledgers
  reconciler reconcile --catalog catalog.xlsx --files 2024_03_매도비.xlsx,2024_03_상품매출.xlsx

  # Every ledger in a directory, csv output, final merge
  reconciler reconcile -c catalog.xlsx -i ledgers/ -f csv -o out --merge

  # Rule-table overrides and deterministic tie break
  reconciler reconcile -c catalog.xlsx -i ledgers/ --rules-dir rules --tie-break catalog_id`,

	Args:    cobra.ArbitraryArgs,
	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	addRunFlags(reconcileCmd)
	reconcileCmd.Flags().Bool("merge", false, "write per-record attribution counts and credit sums onto the catalog (summary, not ledger rows)")
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	if err := bindRunFlags(cmd); err != nil {
		return err
	}

	settings, err := loadRunSettings(args)
	if err != nil {
		return err
	}
	reconcileSettings = settings
	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	settings := reconcileSettings
	log := logger.WithComponent("cli")

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Catalog: %s\n", settings.catalog)
		fmt.Fprintf(os.Stderr, "Ledger files: %d\n", len(settings.inputs))
		fmt.Fprintf(os.Stderr, "Output: %s (%s)\n", settings.report.OutputDir, settings.report.Format)
	}

	service, err := settings.newService()
	if err != nil {
		return err
	}

	catalog, err := service.LoadCatalog(ctx, settings.catalog)
	if err != nil {
		return err
	}

	batch, err := service.ProcessFiles(ctx, catalog, settings.inputs)
	if err != nil {
		return err
	}

	generator, err := reporter.NewSafeReportGenerator(settings.report, log)
	if err != nil {
		return err
	}

	store := reconciler.NewResultStore()
	var written []string
	for _, result := range batch.Results() {
		if previous, ok := store.Get(result.Name); ok {
			log.WithRuleset(result.Name).WithFile(result.File).
				WithField("replaced", filepath.Base(previous.File)).
				Warn("Later file replaces the stored result for its rule-set")
		}
		store.Put(result)

		path, err := generator.WriteFileSafely(reporter.ResultDocument(result))
		if err != nil {
			return err
		}
		written = append(written, path)
	}

	if viper.GetBool("merge") {
		path, err := writeMerge(generator, catalog, store, log)
		if err != nil {
			return err
		}
		if path != "" {
			written = append(written, path)
		}
	}

	out := cmd.OutOrStdout()
	generator.PrintBatch(out, batch)
	generator.PrintWritten(out, written)

	if len(batch.Results()) == 0 && len(batch.Errors) > 0 {
		return errors.NewErrorSummary(batch.Errors)
	}
	return nil
}

// writeMerge joins the stored results onto the catalog. Nothing is written when no
// stored result carries a merge key.
func writeMerge(generator *reporter.SafeReportGenerator, catalog *models.Catalog, store *reconciler.ResultStore, log logger.Logger) (string, error) {
	mergeable := 0
	for _, r := range store.Results() {
		if r.Ruleset != nil && r.Ruleset.MergeKey {
			mergeable++
		}
	}
	if mergeable == 0 {
		log.Warn("No stored result can be merged onto the catalog")
		return "", nil
	}

	merged, err := reconciler.MergeOntoCatalog(catalog, store.Results())
	if err != nil {
		return "", err
	}

	log.WithFields(logger.Fields{
		"results": mergeable,
		"records": len(merged.Rows),
	}).Info("Merged results onto catalog")

	return generator.WriteFileSafely(reporter.MergeDocument(merged, len(catalog.Table.Columns)))
}
