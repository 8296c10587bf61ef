package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/adapters/hookfile"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/editor"
)

var applyCmd = &cobra.Command{
	Use:   "apply <hook-file>",
	Short: "Edit a hook without the interactive editor",
	Long: `Apply edits to a hook file and write the result.

Edits run in this order: model selection, integration, field values,
choices. Selecting a model resets the config to the model defaults.

Examples:
  # Start a Kafka hook from an integration
  hookcfg apply hooks/kafka.yaml --project PRJ --node 3 \
    --model Kafka --integration my-kafka --set "consumer group=builds"

  # Check a branch and print the result
  hookcfg apply hooks/push.json --choice branches=main --out -`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

var (
	applyFlags       contextFlags
	applyModel       string
	applyIntegration string
	applySets        []string
	applyChoices     []string
	applyUnchoices   []string
	applyOut         string
)

func init() {
	rootCmd.AddCommand(applyCmd)
	addContextFlags(applyCmd, &applyFlags)
	applyCmd.Flags().StringVar(&applyModel, "model", "", "hook model name or id to select")
	applyCmd.Flags().StringVar(&applyIntegration, "integration", "", "integration to apply")
	applyCmd.Flags().StringArrayVar(&applySets, "set", nil, "set a field (name=value, repeatable)")
	applyCmd.Flags().StringArrayVar(&applyChoices, "choice", nil, "check a choice (field=choice, repeatable)")
	applyCmd.Flags().StringArrayVar(&applyUnchoices, "unchoice", nil, "uncheck a choice (field=choice, repeatable)")
	applyCmd.Flags().StringVarP(&applyOut, "out", "o", "", "output file, - for stdout (default: the input file)")
}

// applyOptions lists the edits of one apply run.
type applyOptions struct {
	Model       string
	Integration string
	Sets        []string
	Choices     []string
	Unchoices   []string
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(ctx, cfg, args[0], sessionOptions{flags: applyFlags, logger: logger})
	if err != nil {
		return err
	}
	defer s.close()

	warnings, err := applyEdits(ctx, s.editor, applyOptions{
		Model:       applyModel,
		Integration: applyIntegration,
		Sets:        applySets,
		Choices:     applyChoices,
		Unchoices:   applyUnchoices,
	})
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
	}
	if err != nil {
		return err
	}

	h := s.editor.Hook()
	switch applyOut {
	case "-":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(h)
	case "":
		loc, err := s.save(h)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Hook saved to %s\n", loc)
	default:
		stored := s.stored
		if err := hookfile.Write(applyOut, &hookfile.Document{Context: &stored, Hook: h}); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Hook saved to %s\n", applyOut)
	}
	return nil
}

// applyEdits loads the models and runs opts against e. It fails when a json
// field ends up without valid JSON.
func applyEdits(ctx context.Context, e *editor.Editor, opts applyOptions) ([]editor.Warning, error) {
	if err := e.LoadSchemas(ctx); err != nil {
		return nil, err
	}
	warnings := e.Warnings()

	if opts.Model != "" {
		if err := selectModel(e, opts.Model); err != nil {
			return warnings, err
		}
	}
	st := e.State()
	if st.ActiveModel == nil && !st.IsExistingEntry {
		return warnings, core.ErrValidation(core.CodeNoModelSelected, "a new hook needs --model")
	}

	if opts.Integration != "" {
		if err := e.ApplyIntegrationByName(opts.Integration); err != nil {
			return warnings, err
		}
	}
	for _, kv := range opts.Sets {
		name, value, err := splitPair(kv)
		if err != nil {
			return warnings, err
		}
		if err := e.SetFieldValue(name, value); err != nil {
			return warnings, err
		}
	}
	for _, on := range []bool{true, false} {
		pairs := opts.Choices
		if !on {
			pairs = opts.Unchoices
		}
		for _, kv := range pairs {
			name, choice, err := splitPair(kv)
			if err != nil {
				return warnings, err
			}
			if err := e.ToggleMultiChoice(name, choice, on); err != nil {
				return warnings, err
			}
		}
	}

	cfg := e.Config()
	for _, name := range cfg.Keys() {
		if cfg[name].Type() != core.FieldTypeJSON {
			continue
		}
		if res, _ := e.ValidateField(name); res.Invalid {
			return warnings, core.ErrValidation("INVALID_JSON", fmt.Sprintf("field %s does not hold valid JSON", name))
		}
	}
	return warnings, nil
}

// selectModel selects by id when ref is numeric and no model has that name.
func selectModel(e *editor.Editor, ref string) error {
	err := e.SelectSchemaByName(ref)
	if err == nil {
		return nil
	}
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		return e.SelectSchemaByID(id)
	}
	return err
}

func splitPair(kv string) (string, string, error) {
	name, value, ok := strings.Cut(kv, "=")
	if !ok || name == "" {
		return "", "", core.ErrValidation("BAD_PAIR", fmt.Sprintf("expected name=value, got %q", kv))
	}
	return name, value, nil
}
