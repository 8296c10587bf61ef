package core

// HookModel is a named template describing the default field set of a hook.
type HookModel struct {
	ID                 int64      `json:"id" yaml:"id"`
	Name               string     `json:"name" yaml:"name"`
	Type               string     `json:"type,omitempty" yaml:"type,omitempty"`
	Description        string     `json:"description,omitempty" yaml:"description,omitempty"`
	Icon               string     `json:"icon,omitempty" yaml:"icon,omitempty"`
	Author             string     `json:"author,omitempty" yaml:"author,omitempty"`
	Disabled           bool       `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	RequiresRepository bool       `json:"requires_repository,omitempty" yaml:"requires_repository,omitempty"`
	DefaultConfig      HookConfig `json:"default_config" yaml:"default_config"`
}

// Clone returns a deep copy of the model.
func (m HookModel) Clone() HookModel {
	m.DefaultConfig = m.DefaultConfig.Clone()
	return m
}

// IntegrationModel describes what an integration can be used for.
type IntegrationModel struct {
	Name string `json:"name" yaml:"name"`
	Hook bool   `json:"hook" yaml:"hook"`
}

// Integration is a named bundle of pre-filled config values.
type Integration struct {
	ID     int64            `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string           `json:"name" yaml:"name"`
	Model  IntegrationModel `json:"model" yaml:"model"`
	Config HookConfig       `json:"config,omitempty" yaml:"config,omitempty"`
}

// SupportsHook reports whether the integration may configure hooks.
func (i Integration) SupportsHook() bool {
	return i.Model.Hook
}

// Clone returns a deep copy of the integration.
func (i Integration) Clone() Integration {
	i.Config = i.Config.Clone()
	return i
}

// Hook is an event trigger attached to a workflow node.
type Hook struct {
	ID            int64      `json:"id,omitempty" yaml:"id,omitempty"`
	UUID          string     `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	NodeID        int64      `json:"node_id,omitempty" yaml:"node_id,omitempty"`
	HookModelID   int64      `json:"hook_model_id,omitempty" yaml:"hook_model_id,omitempty"`
	HookModelName string     `json:"hook_model_name,omitempty" yaml:"hook_model_name,omitempty"`
	Config        HookConfig `json:"config" yaml:"config"`
}

// Clone returns a deep copy of the hook.
func (h Hook) Clone() Hook {
	h.Config = h.Config.Clone()
	return h
}

// Node is a workflow node a hook can be attached to.
type Node struct {
	ID         int64  `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Repository string `json:"repository,omitempty" yaml:"repository,omitempty"`
}

// HookContext identifies where a hook lives and carries the project
// integrations available to it.
type HookContext struct {
	ProjectKey   string        `json:"project_key" yaml:"project_key"`
	WorkflowName string        `json:"workflow_name" yaml:"workflow_name"`
	NodeID       int64         `json:"node_id,omitempty" yaml:"node_id,omitempty"`
	NodeName     string        `json:"node_name,omitempty" yaml:"node_name,omitempty"`
	Repository   string        `json:"repository,omitempty" yaml:"repository,omitempty"`
	Nodes        []Node        `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Integrations []Integration `json:"integrations,omitempty" yaml:"integrations,omitempty"`
	Readonly     bool          `json:"readonly,omitempty" yaml:"readonly,omitempty"`
}

// NodeByID finds a node of the workflow.
func (c HookContext) NodeByID(id int64) (Node, bool) {
	for _, n := range c.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// ResolveNode fills the node identity from nodeID when the context does not
// name a node yet.
func (c HookContext) ResolveNode(nodeID int64) HookContext {
	if c.NodeID != 0 || nodeID == 0 {
		return c
	}
	c.NodeID = nodeID
	if n, ok := c.NodeByID(nodeID); ok {
		c.NodeName = n.Name
		if c.Repository == "" {
			c.Repository = n.Repository
		}
	}
	return c
}

// HookIntegrations filters integrations down to those usable by hooks.
func HookIntegrations(all []Integration) []Integration {
	out := make([]Integration, 0, len(all))
	for _, i := range all {
		if i.SupportsHook() {
			out = append(out, i.Clone())
		}
	}
	return out
}
