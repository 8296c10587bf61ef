package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/adapters/hookfile"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/catalog"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/config"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/editor"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/events"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/logging"
)

// loadConfig loads and validates the configuration using global viper, so
// persistent flag bindings apply.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) *logging.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
}

// contextFlags identify the node a hook belongs to. Set flags override the
// context stored in the hook file.
type contextFlags struct {
	project    string
	workflow   string
	node       int64
	repository string
	readonly   bool
}

func addContextFlags(c *cobra.Command, f *contextFlags) {
	c.Flags().StringVar(&f.project, "project", "", "project key")
	c.Flags().StringVar(&f.workflow, "workflow", "", "workflow name")
	c.Flags().Int64Var(&f.node, "node", 0, "workflow node id")
	c.Flags().StringVar(&f.repository, "repository", "", "repository attached to the node")
	c.Flags().BoolVar(&f.readonly, "readonly", false, "forbid editing json fields")
}

func (f contextFlags) apply(hc core.HookContext) core.HookContext {
	if f.project != "" {
		hc.ProjectKey = f.project
	}
	if f.workflow != "" {
		hc.WorkflowName = f.workflow
	}
	if f.node != 0 {
		hc.NodeID = f.node
	}
	if f.repository != "" {
		hc.Repository = f.repository
	}
	if f.readonly {
		hc.Readonly = true
	}
	return hc
}

// session is an editing session over one hook file.
type session struct {
	path   string
	exists bool
	stored core.HookContext
	source catalog.Source
	editor *editor.Editor
}

type sessionOptions struct {
	flags  contextFlags
	logger *logging.Logger
	bus    *events.EventBus
}

// openSession reads the hook file at path, or starts a new hook when the
// file does not exist, and initializes an editor for it.
func openSession(ctx context.Context, cfg *config.Config, path string, opts sessionOptions) (*session, error) {
	s := &session{path: path}

	var seed *core.Hook
	doc, err := hookfile.Read(path)
	switch {
	case err == nil:
		s.exists = true
		seed = &doc.Hook
		if doc.Context != nil {
			s.stored = *doc.Context
		}
	case errors.Is(err, fs.ErrNotExist):
		// new hook
	default:
		return nil, err
	}

	s.stored = opts.flags.apply(s.stored)
	if s.stored.ProjectKey == "" {
		return nil, core.ErrValidation("NO_PROJECT", "project key is required: pass --project or set context.project_key in the hook file")
	}

	src, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	s.source = src

	hc := s.stored
	if len(hc.Integrations) == 0 {
		hc, err = catalog.Context(ctx, src, hc)
		if err != nil {
			_ = catalog.Close(src)
			return nil, fmt.Errorf("loading integrations: %w", err)
		}
	}
	hc.Readonly = hc.Readonly || cfg.Editor.Readonly

	logger := opts.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	editorOpts := []editor.Option{editor.WithLogger(logger)}
	if opts.bus != nil {
		editorOpts = append(editorOpts, editor.WithEventBus(opts.bus))
	}
	s.editor = editor.New(src, editorOpts...)
	s.editor.Initialize(seed, hc)
	return s, nil
}

// save writes the hook back with the context it was opened with.
func (s *session) save(h core.Hook) (string, error) {
	stored := s.stored
	return s.path, hookfile.Write(s.path, &hookfile.Document{Context: &stored, Hook: h})
}

func (s *session) close() {
	s.editor.Close()
	_ = catalog.Close(s.source)
}
