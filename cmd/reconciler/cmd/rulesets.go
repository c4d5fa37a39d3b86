package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"sales-ledger-reconciler/internal/rulesets"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// rulesetsCmd lists the rule-sets and the labels they assign.
var rulesetsCmd = &cobra.Command{
	Use:   "rulesets",
	Short: "List the ledger rule-sets",
	Long: `Rulesets lists every rule-set in dispatch order, followed by the aggregate
rule-set: the file-name keyword, extraction and match modes, required columns,
derived output columns and the labels its classification tables can assign.
Overrides from --rules-dir are applied before listing.

Examples:
  reconciler rulesets
  reconciler rulesets --rules-dir rules --format yaml`,

	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return viper.BindPFlags(cmd.Flags())
	},
	RunE: runRulesets,
}

func init() {
	rootCmd.AddCommand(rulesetsCmd)

	rulesetsCmd.Flags().String("rules-dir", "", "directory with <ruleset>.yaml rule-table overrides")
	rulesetsCmd.Flags().String("format", "text", "listing format: text, yaml")
}

// rulesetInfo is the listing view of one rule-set.
type rulesetInfo struct {
	Key             string   `yaml:"key"`
	Name            string   `yaml:"name"`
	Keyword         string   `yaml:"keyword,omitempty"`
	Extraction      string   `yaml:"extraction"`
	Match           string   `yaml:"match"`
	MergeKey        bool     `yaml:"merge_key"`
	RequiredColumns []string `yaml:"required_columns"`
	Columns         []string `yaml:"columns"`
	Categories      []string `yaml:"categories,omitempty"`
	Allocations     []string `yaml:"allocations,omitempty"`
	Counterparties  []string `yaml:"counterparties,omitempty"`
}

func describe(rs *rulesets.Ruleset) rulesetInfo {
	info := rulesetInfo{
		Key:             rs.Key,
		Name:            rs.Name,
		Keyword:         rs.Keyword,
		Extraction:      rs.Extraction.Mode.String(),
		Match:           rs.Match.String(),
		MergeKey:        rs.MergeKey,
		RequiredColumns: rs.RequiredColumns,
		Columns:         rs.Headers(),
		Counterparties:  rs.Counterparties.Canonicals(),
	}
	info.Categories = nonEmpty(rs.Category.Labels())
	info.Allocations = nonEmpty(rs.Allocation.Labels())
	return info
}

// nonEmpty drops the blank label, which means "leave the cell empty".
func nonEmpty(labels []string) []string {
	var out []string
	for _, l := range labels {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func runRulesets(cmd *cobra.Command, args []string) error {
	registry, err := rulesets.Default().LoadOverrides(viper.GetString("rules-dir"))
	if err != nil {
		return err
	}

	infos := make([]rulesetInfo, 0, len(registry.All())+1)
	for _, rs := range registry.All() {
		infos = append(infos, describe(rs))
	}
	infos = append(infos, describe(registry.Aggregate()))

	out := cmd.OutOrStdout()
	switch format := viper.GetString("format"); format {
	case "", "text":
		return printRulesets(out, infos)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(infos); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("invalid listing format '%s'. Valid formats: text, yaml", format)
	}
}

func printRulesets(w io.Writer, infos []rulesetInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tNAME\tKEYWORD\tEXTRACTION\tMATCH\tMERGE\tLABELS")
	for _, info := range infos {
		keyword := info.Keyword
		if keyword == "" {
			keyword = "-"
		}
		labels := append(append([]string(nil), info.Categories...), info.Allocations...)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
			info.Key, info.Name, keyword, info.Extraction, info.Match, info.MergeKey,
			strings.Join(labels, ", "))
	}
	return tw.Flush()
}
