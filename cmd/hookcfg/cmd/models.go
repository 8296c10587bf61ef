package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/catalog"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/tui"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the hook models offered for a node",
	Long: `List the hook models the catalog offers for a node. Disabled models
and models that need a repository (when --repository is not given) are left out.

Examples:
  hookcfg models --project PRJ --workflow build --node 12
  hookcfg models --project PRJ --describe Kafka`,
	RunE: runModels,
}

var (
	modelsFlags    contextFlags
	modelsDescribe string
	modelsJSON     bool
)

func init() {
	rootCmd.AddCommand(modelsCmd)
	addContextFlags(modelsCmd, &modelsFlags)
	modelsCmd.Flags().StringVar(&modelsDescribe, "describe", "", "show the fields of one model")
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "output as JSON")
}

func runModels(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return err
	}
	defer func() { _ = catalog.Close(src) }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	models, err := src.FetchModels(ctx, modelsFlags.apply(core.HookContext{}))
	if err != nil {
		return err
	}

	if modelsDescribe != "" {
		for _, m := range models {
			if m.Name == modelsDescribe {
				return describeModel(os.Stdout, m)
			}
		}
		return core.ErrNotFound("hook model", modelsDescribe)
	}
	return listModels(os.Stdout, models, modelsJSON)
}

func listModels(out io.Writer, models []core.HookModel, asJSON bool) error {
	if asJSON {
		if models == nil {
			models = []core.HookModel{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(models)
	}

	if len(models) == 0 {
		fmt.Fprintln(out, "No hook models available.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tFIELDS\tDESCRIPTION")
	for _, m := range models {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", m.ID, m.Name, m.Type, len(m.DefaultConfig), truncate(m.Description, 50))
	}
	return w.Flush()
}

func describeModel(out io.Writer, m core.HookModel) error {
	width := 80
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	_, err := fmt.Fprint(out, tui.RenderMarkdown(tui.ModelMarkdown(m), width))
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
