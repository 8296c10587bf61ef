package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/catalog"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration and a starter catalog",
	Long: `Create .hookcfg.yaml and .hookcfg/catalog.yaml in the current directory.
An existing catalog is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration")
}

const starterCatalog = `# Hook models and integrations offered by hookcfg.
models:
  - id: 1
    name: WebHook
    type: standard
    description: Trigger the workflow with an HTTP call
    default_config:
      method:
        type: string
        value: POST
      payload:
        type: json
        value: "{}"
  - id: 2
    name: RepositoryWebHook
    type: repository
    description: Trigger the workflow on repository events
    requires_repository: true
    default_config:
      branches:
        type: multiple
        value: ""
        multiple_choice_list: [main, develop]
  - id: 3
    name: Scheduler
    type: standard
    description: Trigger the workflow periodically
    default_config:
      cron:
        type: string
        value: "0 * * * *"
      timezone:
        type: string
        value: UTC
  - id: 4
    name: Kafka
    type: standard
    description: Trigger the workflow on Kafka messages
    default_config:
      integration:
        type: integration
        value: ""
      topic:
        type: string
        value: ""
integrations:
  - name: kafka-dev
    model:
      name: Kafka
      hook: true
    config:
      topic:
        type: string
        value: events
`

func runInit(_ *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}
	return initProject(cwd, initForce)
}

func initProject(dir string, force bool) error {
	configPath := filepath.Join(dir, ".hookcfg.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration already exists, use --force to overwrite")
	}
	if err := os.WriteFile(configPath, []byte(config.DefaultConfigYAML), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("Created %s\n", configPath)

	catalogPath := filepath.Join(dir, ".hookcfg", "catalog.yaml")
	if _, err := os.Stat(catalogPath); err == nil {
		return nil
	}
	if _, err := catalog.Parse([]byte(starterCatalog)); err != nil {
		return fmt.Errorf("starter catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(catalogPath), 0o750); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}
	if err := os.WriteFile(catalogPath, []byte(starterCatalog), 0o600); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	fmt.Printf("Created %s\n", catalogPath)
	return nil
}
