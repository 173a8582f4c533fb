package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/envmap-cli/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <value>...",
	Short: "Classify measurements against a breakpoint table",
	Example: `  envmap classify --table aqi 42 50.0001 301
  envmap classify --table elevation 1500 1500.01`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("table")
		table, err := lookupTable(name)
		if err != nil {
			return eris.Wrap(err, "classify")
		}
		return printClassification(cmd.OutOrStdout(), table, args)
	},
}

func printClassification(out io.Writer, table *classify.Table, args []string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VALUE\tLABEL\tCOLOR")
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return eris.Wrapf(err, "classify: parse %q", arg)
		}
		res, err := table.Classify(v)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", arg, res.Label, res.Color)
	}
	return w.Flush()
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List breakpoint tables and their buckets",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tables, err := classify.LoadFile(cfg.TablesFile)
		if err != nil {
			return eris.Wrap(err, "tables")
		}
		return printTables(cmd.OutOrStdout(), tables)
	},
}

func printTables(out io.Writer, tables classify.Set) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TABLE\tUPPER\tLABEL\tCOLOR")
	for _, name := range tables.Names() {
		for _, b := range tables[name].Buckets() {
			upper := "+inf"
			if !math.IsInf(b.Upper, 1) {
				upper = strconv.FormatFloat(b.Upper, 'f', -1, 64)
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, upper, b.Label, b.Color)
		}
	}
	return w.Flush()
}

func init() {
	classifyCmd.Flags().String("table", classify.TableAQI, "breakpoint table name")
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(tablesCmd)
}
