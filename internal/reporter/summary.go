package reporter

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"sales-ledger-reconciler/internal/reconciler"
	"sales-ledger-reconciler/pkg/errors"
)

// PrintSummary writes the per-file run summary: valid (matched), empty (unmatched),
// repeated catalog IDs and canceled entries.
func (rg *ReportGenerator) PrintSummary(w io.Writer, results []*reconciler.Result) {
	fmt.Fprintf(w, "=== 처리 결과 ===\n")
	if len(results) == 0 {
		fmt.Fprintf(w, "처리된 파일이 없습니다.\n")
		return
	}

	var total reconciler.Stats
	for _, r := range results {
		s := r.Stats
		fmt.Fprintf(w, "%s [%s]\n", filepath.Base(r.File), r.Name)
		fmt.Fprintf(w, "  전체: %d  정상: %d (%.1f%%)  빈값: %d  중복: %d  취소: %d\n",
			s.Total, s.Matched, percentage(s.Matched, s.Total), s.Unmatched, s.RepeatedIDs, s.Canceled)

		total.Total += s.Total
		total.Matched += s.Matched
		total.Unmatched += s.Unmatched
		total.RepeatedIDs += s.RepeatedIDs
		total.Canceled += s.Canceled
	}

	if len(results) > 1 {
		fmt.Fprintf(w, "\n합계 (%d files)\n", len(results))
		fmt.Fprintf(w, "  전체: %d  정상: %d (%.1f%%)  빈값: %d  중복: %d  취소: %d\n",
			total.Total, total.Matched, percentage(total.Matched, total.Total),
			total.Unmatched, total.RepeatedIDs, total.Canceled)
	}
}

// PrintBatch writes the batch header, the summary of successful files and the
// skipped files with their reasons.
func (rg *ReportGenerator) PrintBatch(w io.Writer, batch *reconciler.Batch) {
	fmt.Fprintf(w, "RECONCILIATION RUN %s\n", batch.RunID)
	fmt.Fprintf(w, "Files: %d  Succeeded: %d  Failed: %d  Duration: %v\n\n",
		len(batch.Outcomes), len(batch.Outcomes)-batch.Failed(), batch.Failed(),
		batch.Duration.Round(time.Millisecond))

	rg.PrintSummary(w, batch.Results())

	if len(batch.Errors) > 0 {
		fmt.Fprintf(w, "\n=== 건너뛴 파일 ===\n")
		fmt.Fprintln(w, errors.FormatErrorsForUser(batch.Errors))
	}
}

// PrintWritten lists the files written by a run.
func (rg *ReportGenerator) PrintWritten(w io.Writer, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(w, "\n=== 저장된 파일 ===\n")
	for _, p := range paths {
		fmt.Fprintf(w, "  %s\n", p)
	}
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
