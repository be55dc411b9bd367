package plugin

import (
	"errors"
	"fmt"
	"slices"

	"github.com/arloliu/odinplan/types"
)

// DefaultMode is the mode of the connections loaded at startup.
const DefaultMode = ""

// Edge connects a plugin to its source under a mode.
type Edge struct {
	Mode   string
	Plugin string
	Source string
}

// Chain is a plugin connection graph with per-mode alternate edges.
//
// Chains are built once and then validated; they are not safe for concurrent mutation.
type Chain struct {
	plugins []Plugin
	edges   []Edge
	modes   []string
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add appends a plugin connected to source in the default mode.
// An empty source means FrameReceiver.
func (c *Chain) Add(p Plugin, source string) *Chain {
	if source == "" {
		source = FrameReceiver
	}
	c.plugins = append(c.plugins, p)
	c.edges = append(c.edges, Edge{Mode: DefaultMode, Plugin: p.Name, Source: source})

	return c
}

// AddMode connects an already added plugin to source under a named mode,
// declaring the mode if needed. An empty source means FrameReceiver.
func (c *Chain) AddMode(mode, plugin, source string) *Chain {
	if source == "" {
		source = FrameReceiver
	}
	c.DeclareModes(mode)
	c.edges = append(c.edges, Edge{Mode: mode, Plugin: plugin, Source: source})

	return c
}

// DeclareModes registers modes in declaration order without adding edges.
// A declared mode that never receives an edge fails validation.
func (c *Chain) DeclareModes(modes ...string) *Chain {
	for _, m := range modes {
		if !slices.Contains(c.modes, m) {
			c.modes = append(c.modes, m)
		}
	}

	return c
}

// Plugins returns the plugins in insertion order.
func (c *Chain) Plugins() []Plugin {
	return slices.Clone(c.plugins)
}

// Modes returns the named modes in declaration order.
func (c *Chain) Modes() []string {
	return slices.Clone(c.modes)
}

// Len returns the number of plugins in the chain.
func (c *Chain) Len() int {
	return len(c.plugins)
}

// Validate checks the graph structure.
//
// Rules:
//   - plugin names are non-empty, unique and not FrameReceiver
//   - every edge names a known plugin, a known source and a declared mode
//   - a plugin has at most one source per mode
//   - every declared mode has at least one edge
//   - no mode contains a cycle
//
// Returns:
//   - error: types.ErrInvalidPluginChain joined with every violation, nil if valid
func (c *Chain) Validate() error {
	var errs []error
	names := make(map[string]struct{}, len(c.plugins))
	for _, p := range c.plugins {
		switch {
		case p.Name == "":
			errs = append(errs, fmt.Errorf("plugin with class %q has no name", p.ClassName))
		case p.Name == FrameReceiver:
			errs = append(errs, fmt.Errorf("plugin name %q is reserved", FrameReceiver))
		default:
			if _, dup := names[p.Name]; dup {
				errs = append(errs, fmt.Errorf("plugin %q added twice", p.Name))
			}
			names[p.Name] = struct{}{}
		}
	}

	modeEdges := make(map[string]int, len(c.modes))
	sources := make(map[[2]string]struct{}, len(c.edges))
	for _, e := range c.edges {
		if e.Mode != DefaultMode && !slices.Contains(c.modes, e.Mode) {
			errs = append(errs, fmt.Errorf("edge %s<-%s uses undeclared mode %q", e.Plugin, e.Source, e.Mode))
		}
		if _, ok := names[e.Plugin]; !ok {
			errs = append(errs, fmt.Errorf("mode %q connects unknown plugin %q", modeLabel(e.Mode), e.Plugin))
		}
		if _, ok := names[e.Source]; !ok && e.Source != FrameReceiver {
			errs = append(errs, fmt.Errorf("plugin %q in mode %q has dangling source %q", e.Plugin, modeLabel(e.Mode), e.Source))
		}
		key := [2]string{e.Mode, e.Plugin}
		if _, dup := sources[key]; dup {
			errs = append(errs, fmt.Errorf("plugin %q has more than one source in mode %q", e.Plugin, modeLabel(e.Mode)))
		}
		sources[key] = struct{}{}
		modeEdges[e.Mode]++
	}

	for _, m := range c.modes {
		if modeEdges[m] == 0 {
			errs = append(errs, fmt.Errorf("mode %q has no connections", m))
		}
	}

	if len(errs) == 0 {
		for _, m := range append([]string{DefaultMode}, c.modes...) {
			if _, err := c.order(m); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", types.ErrInvalidPluginChain, errors.Join(errs...))
	}

	return nil
}

// LoadOrder returns the plugins in dependency order of the default mode:
// every plugin appears after its source. Ties are broken by name.
//
// Returns:
//   - []Plugin: Plugins in load order
//   - error: types.ErrInvalidPluginChain when the default mode has a cycle
func (c *Chain) LoadOrder() ([]Plugin, error) {
	order, err := c.order(DefaultMode)
	if err != nil {
		return nil, err
	}

	out := make([]Plugin, 0, len(order))
	for _, name := range order {
		if i := slices.IndexFunc(c.plugins, func(p Plugin) bool { return p.Name == name }); i >= 0 {
			out = append(out, c.plugins[i])
		}
	}

	return out, nil
}

// ConnectOrder returns the edges of a mode in dependency order.
//
// Parameters:
//   - mode: DefaultMode or a declared mode
//
// Returns:
//   - []Edge: Edges ordered so that a plugin's source is connected first
//   - error: types.ErrInvalidPluginChain when the mode has a cycle
func (c *Chain) ConnectOrder(mode string) ([]Edge, error) {
	order, err := c.order(mode)
	if err != nil {
		return nil, err
	}

	byPlugin := make(map[string]Edge)
	for _, e := range c.edges {
		if e.Mode == mode {
			byPlugin[e.Plugin] = e
		}
	}

	out := make([]Edge, 0, len(byPlugin))
	for _, name := range order {
		if e, ok := byPlugin[name]; ok {
			out = append(out, e)
		}
	}

	return out, nil
}

// order runs Kahn's algorithm over the edges of one mode. Plugins without an
// edge in the mode are included as roots so that the default-mode load order
// covers every plugin.
func (c *Chain) order(mode string) ([]string, error) {
	indeg := make(map[string]int, len(c.plugins))
	children := make(map[string][]string, len(c.plugins))
	for _, p := range c.plugins {
		indeg[p.Name] = 0
	}
	for _, e := range c.edges {
		if e.Mode != mode || e.Source == FrameReceiver {
			continue
		}
		if _, ok := indeg[e.Source]; !ok {
			continue
		}
		indeg[e.Plugin]++
		children[e.Source] = append(children[e.Source], e.Plugin)
	}

	var ready []string
	for name, d := range indeg {
		if d == 0 {
			ready = append(ready, name)
		}
	}
	slices.Sort(ready)

	order := make([]string, 0, len(indeg))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)
		for _, child := range children[name] {
			indeg[child]--
			if indeg[child] == 0 {
				ready = append(ready, child)
			}
		}
		slices.Sort(ready)
	}

	if len(order) != len(indeg) {
		return nil, fmt.Errorf("mode %q contains a cycle: %w", modeLabel(mode), types.ErrInvalidPluginChain)
	}

	return order, nil
}

func modeLabel(mode string) string {
	if mode == DefaultMode {
		return "default"
	}

	return mode
}
