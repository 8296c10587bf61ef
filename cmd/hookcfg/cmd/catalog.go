package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage hook model catalogs",
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check <catalog-file>",
	Short: "Validate a catalog file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return checkCatalog(os.Stdout, args[0])
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <catalog-file>",
	Short: "Load a catalog file into a SQLite catalog",
	Long: `Load a catalog file into a SQLite catalog.

Without --project the stored models and shared integrations are replaced.
With --project only the integrations of the file are stored, scoped to that
project; they take precedence over shared integrations of the same name.

Examples:
  hookcfg catalog import catalog.yaml --db .hookcfg/catalog.db
  hookcfg catalog import prj-integrations.yaml --project PRJ`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

var (
	catalogDB      string
	catalogProject string
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogCheckCmd)
	catalogCmd.AddCommand(catalogImportCmd)

	catalogImportCmd.Flags().StringVar(&catalogDB, "db", "", "SQLite catalog path (default: catalog.db_path)")
	catalogImportCmd.Flags().StringVar(&catalogProject, "project", "", "store integrations for this project only")
}

func checkCatalog(out io.Writer, path string) error {
	c, err := catalog.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d models, %d integrations\n", path, len(c.Models), len(c.Integrations))
	return nil
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	dbPath := catalogDB
	if dbPath == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dbPath = cfg.Catalog.DBPath
	}
	if dbPath == "" {
		return fmt.Errorf("no database: pass --db or set catalog.db_path")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return importCatalog(ctx, os.Stdout, args[0], dbPath, catalogProject)
}

func importCatalog(ctx context.Context, out io.Writer, path, dbPath, project string) error {
	c, err := catalog.Load(path)
	if err != nil {
		return err
	}
	store, err := catalog.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if project == "" {
		if err := store.Import(ctx, c); err != nil {
			return err
		}
		fmt.Fprintf(out, "Imported %d models and %d integrations into %s\n", len(c.Models), len(c.Integrations), dbPath)
		return nil
	}

	for _, in := range c.Integrations {
		if err := store.SaveIntegration(ctx, project, in); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "Stored %d integrations for project %s in %s\n", len(c.Integrations), project, dbPath)
	return nil
}
