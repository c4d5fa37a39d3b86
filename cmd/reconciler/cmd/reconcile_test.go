package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	testCatalogCSV = "상품ID,판매일자,신차량번호,구차량번호,판매처\n" +
		"C100,2024-03-10,서울12가3456,34나5678,옥션\n" +
		"C200,2024-02-20,56다7890,,직영\n"

	testSellerFeeCSV = "회계일자,적요,차변,대변,관리항목2,작성자\n" +
		"2024-03-05,서울12가3456(34나5678) 매도비,,\"100,000\",A,kim\n" +
		"2024-03-06,34나5678(서울12가3456) 매도비,,200000,A,kim\n" +
		"월계,,,300000,,\n" +
		"2024-03-07,기타 매도비,,50000,B,lee\n"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	return path
}

// resetCommand restores a command's flags to their defaults so repeated Execute
// calls on the package-level commands do not see earlier values.
func resetCommand(t *testing.T, cmd *cobra.Command) {
	t.Helper()
	viper.Reset()
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

func TestValidateFileExists(t *testing.T) {
	// Create temporary test files
	tmpDir := t.TempDir()
	validFile := writeFile(t, filepath.Join(tmpDir, "catalog.csv"), "test")

	tests := []struct {
		name        string
		filePath    string
		description string
		expectError bool
	}{
		{
			name:        "valid file",
			filePath:    validFile,
			description: "test file",
			expectError: false,
		},
		{
			name:        "empty path",
			filePath:    "",
			description: "test file",
			expectError: true,
		},
		{
			name:        "non-existent file",
			filePath:    "/non/existent/file.csv",
			description: "test file",
			expectError: true,
		},
		{
			name:        "directory instead of file",
			filePath:    tmpDir,
			description: "test file",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath, tt.description)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateReconcileFlags(t *testing.T) {
	tmpDir := t.TempDir()
	catalog := writeFile(t, filepath.Join(tmpDir, "catalog.csv"), testCatalogCSV)
	ledger := writeFile(t, filepath.Join(tmpDir, "ledgers", "2024_03_매도비.csv"), testSellerFeeCSV)

	tests := []struct {
		name          string
		setupFlags    func()
		args          []string
		expectError   bool
		errorContains string
	}{
		{
			name: "valid flags",
			setupFlags: func() {
				viper.Set("catalog", catalog)
				viper.Set("files", []string{ledger})
				viper.Set("output-format", "csv")
			},
			expectError: false,
		},
		{
			name: "positional ledger",
			setupFlags: func() {
				viper.Set("catalog", catalog)
			},
			args:        []string{ledger},
			expectError: false,
		},
		{
			name: "missing catalog",
			setupFlags: func() {
				viper.Set("files", []string{ledger})
			},
			expectError:   true,
			errorContains: "catalog is required",
		},
		{
			name: "missing files",
			setupFlags: func() {
				viper.Set("catalog", catalog)
				viper.Set("files", []string{})
			},
			expectError:   true,
			errorContains: "at least one ledger file is required",
		},
		{
			name: "catalog does not exist",
			setupFlags: func() {
				viper.Set("catalog", filepath.Join(tmpDir, "missing.xlsx"))
				viper.Set("files", []string{ledger})
			},
			expectError:   true,
			errorContains: "catalog file does not exist",
		},
		{
			name: "invalid output format",
			setupFlags: func() {
				viper.Set("catalog", catalog)
				viper.Set("files", []string{ledger})
				viper.Set("output-format", "console")
			},
			expectError:   true,
			errorContains: "invalid output format",
		},
		{
			name: "unknown tie break",
			setupFlags: func() {
				viper.Set("catalog", catalog)
				viper.Set("files", []string{ledger})
				viper.Set("tie-break", "newest")
			},
			expectError:   true,
			errorContains: "unknown tie break",
		},
		{
			name: "negative concurrency",
			setupFlags: func() {
				viper.Set("catalog", catalog)
				viper.Set("files", []string{ledger})
				viper.Set("concurrency", -1)
			},
			expectError:   true,
			errorContains: "concurrency cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper
			viper.Reset()
			tt.setupFlags()

			cmd := &cobra.Command{}
			err := validateReconcileFlags(cmd, tt.args)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				} else if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("expected error to contain '%s', got: %v", tt.errorContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(reconcileSettings.inputs) != 1 || reconcileSettings.inputs[0] != ledger {
				t.Errorf("unexpected inputs %v", reconcileSettings.inputs)
			}
		})
	}
}

func TestReconcileCommandHelp(t *testing.T) {
	cmd := reconcileCmd

	for _, name := range []string{"catalog", "files", "output-dir", "output-format", "rules-dir", "concurrency", "tie-break", "merge"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("%s flag not found", name)
		}
	}

	// Test help output contains key information
	var helpOutput bytes.Buffer
	cmd.SetOut(&helpOutput)
	defer cmd.SetOut(nil)
	cmd.Help()

	helpText := helpOutput.String()

	expectedSections := []string{
		"Usage:",
		"Examples:",
		"Flags:",
		"--catalog",
		"--files",
		"--merge",
		"does not repeat the annotated",
		"not ledger rows",
	}

	for _, section := range expectedSections {
		if !strings.Contains(helpText, section) {
			t.Errorf("help text should contain '%s'", section)
		}
	}
}

func TestReconcileEndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	catalog := writeFile(t, filepath.Join(tmpDir, "catalog.csv"), testCatalogCSV)
	ledgers := filepath.Join(tmpDir, "ledgers")
	writeFile(t, filepath.Join(ledgers, "2024_03_매도비.csv"), testSellerFeeCSV)
	writeFile(t, filepath.Join(ledgers, "메모.csv"), "a,b\n1,2\n")
	outDir := filepath.Join(tmpDir, "out")

	resetCommand(t, reconcileCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs([]string{
		"reconcile",
		"--catalog", catalog,
		"--files", ledgers,
		"--output-dir", outDir,
		"--output-format", "csv",
		"--merge",
	})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	summary := out.String()
	for _, want := range []string{"Succeeded: 1  Failed: 1", "v4(매도비)", "메모.csv"} {
		if !strings.Contains(summary, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, summary)
		}
	}

	processed, err := os.ReadFile(filepath.Join(outDir, "2024_03_매도비_처리본.csv"))
	if err != nil {
		t.Fatalf("expected processed ledger: %v", err)
	}
	if strings.Contains(string(processed), "월계") {
		t.Error("subtotal rows must not reach the output")
	}
	if !strings.Contains(string(processed), "C100") {
		t.Errorf("expected matched catalog id in output:\n%s", processed)
	}

	merged, err := os.ReadFile(filepath.Join(outDir, "최종_머지_결과.csv"))
	if err != nil {
		t.Fatalf("expected merge output: %v", err)
	}
	for _, want := range []string{
		"v4(매도비)_건수,v4(매도비)_금액",
		"C100,2024-03-10,서울12가3456,34나5678,옥션,2,300000",
		"C200,2024-02-20,56다7890,,직영,0,0",
	} {
		if !strings.Contains(string(merged), want) {
			t.Errorf("expected merge output to contain %q, got:\n%s", want, merged)
		}
	}
}

func TestReconcileAllFilesFail(t *testing.T) {
	tmpDir := t.TempDir()
	catalog := writeFile(t, filepath.Join(tmpDir, "catalog.csv"), testCatalogCSV)
	ledger := writeFile(t, filepath.Join(tmpDir, "ledgers", "메모.csv"), "a,b\n1,2\n")

	resetCommand(t, reconcileCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs([]string{
		"reconcile",
		"--catalog", catalog,
		"--files", ledger,
		"--output-dir", filepath.Join(tmpDir, "out"),
		"--output-format", "csv",
	})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected an error when no file can be processed")
	}

	handler := NewCLIErrorHandler()
	handler.out = &bytes.Buffer{}
	if code := handler.HandleError(err); code != 5 {
		t.Errorf("expected dispatch exit code 5, got %d", code)
	}
}

func TestAggregateEndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	catalog := writeFile(t, filepath.Join(tmpDir, "catalog.csv"), testCatalogCSV)
	header := "계정코드,계정명,회계일자,NO,적요,거래처코드,거래처,차변,대변,작성사원명\n"
	first := writeFile(t, filepath.Join(tmpDir, "in", "2024_03_기타.csv"),
		header+"41100,기타매출(탁송비),2024-03-11,1,서울12가3456 탁송,P1,탁송사,,30000,kim\n")
	second := writeFile(t, filepath.Join(tmpDir, "in", "2024_02_기타.csv"),
		header+"41100,기타매출(엔카홈서비스),2024-02-21,1,56다7890 홈서비스,P2,홈,,20000,lee\n")
	broken := writeFile(t, filepath.Join(tmpDir, "in", "메모.csv"), "a,b\n1,2\n")
	outDir := filepath.Join(tmpDir, "out")

	resetCommand(t, aggregateCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs([]string{
		"aggregate",
		"--catalog", catalog,
		"--output-dir", outDir,
		"--output-format", "csv",
		first, second, broken,
	})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	if !strings.Contains(out.String(), "건너뛴 파일") {
		t.Errorf("expected skipped file report, got:\n%s", out.String())
	}

	data, err := os.ReadFile(filepath.Join(outDir, "매출_기타매출_통합.csv"))
	if err != nil {
		t.Fatalf("expected aggregate output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines:\n%s", len(lines), data)
	}
}
