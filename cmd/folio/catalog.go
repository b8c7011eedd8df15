package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/folio-motion/registry"
)

var (
	listPage    string
	listEngine  string
	listTrigger string
	listLimit   int
)

// catalogCmd inspects the animation catalog
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the animation catalog",
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show entry counts per page, trigger, engine and component",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		printStats(cmd.OutOrStdout(), loadCatalog().Stats())
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	Long: `Lists catalog entries, optionally filtered.

Example:
  folio catalog list --page home --trigger load`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if listEngine != "" && !registry.Engine(listEngine).Valid() {
			return fmt.Errorf("unknown engine %q", listEngine)
		}
		if listTrigger != "" && !registry.Trigger(listTrigger).Valid() {
			return fmt.Errorf("unknown trigger %q", listTrigger)
		}
		entries := filterEntries(loadCatalog().All(), listPage, registry.Engine(listEngine), registry.Trigger(listTrigger))
		if listLimit > 0 && len(entries) > listLimit {
			entries = entries[:listLimit]
		}
		printEntries(cmd.OutOrStdout(), entries)
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one catalog entry as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, ok := loadCatalog().Lookup(args[0])
		if !ok {
			return fmt.Errorf("animation %q not found", args[0])
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(d)
	},
}

func init() {
	catalogListCmd.Flags().StringVar(&listPage, "page", "", "Only entries of this page")
	catalogListCmd.Flags().StringVar(&listEngine, "engine", "", "Only entries of this engine")
	catalogListCmd.Flags().StringVar(&listTrigger, "trigger", "", "Only entries with this trigger")
	catalogListCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum entries to print, 0 for all")

	catalogCmd.AddCommand(catalogStatsCmd, catalogListCmd, catalogShowCmd)
}

func filterEntries(all []registry.Descriptor, page string, eng registry.Engine, trigger registry.Trigger) []registry.Descriptor {
	out := all[:0:0]
	for _, d := range all {
		if page != "" && d.Page != page {
			continue
		}
		if eng != "" && d.Engine != eng {
			continue
		}
		if trigger != "" && d.Trigger != trigger {
			continue
		}
		out = append(out, d)
	}
	return out
}

func printEntries(w io.Writer, entries []registry.Descriptor) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPAGE\tCOMPONENT\tENGINE\tTRIGGER\tDURATION")
	for _, d := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", d.ID, d.Page, d.Component, d.Engine, d.Trigger, d.Duration)
	}
	tw.Flush()
}

func printStats(w io.Writer, s registry.Stats) {
	fmt.Fprintf(w, "Total: %d\n", s.Total)
	for _, group := range []struct {
		title  string
		counts map[string]int
	}{
		{"Pages", s.ByPage},
		{"Triggers", s.ByTrigger},
		{"Engines", s.ByEngine},
		{"Components", s.ByComponent},
	} {
		fmt.Fprintf(w, "\n%s:\n", group.title)
		keys := make([]string, 0, len(group.counts))
		for k := range group.counts {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		width := 0
		for _, k := range keys {
			width = max(width, len(k))
		}
		for _, k := range keys {
			fmt.Fprintf(w, "  %s%s %d\n", k, strings.Repeat(" ", width-len(k)), group.counts[k])
		}
	}
}
