package testfixtures

import (
	"fmt"
	"strings"
)

type pluginBlock struct {
	pluginType string
	bare       bool
	settings   []string
}

// PanelBuilder provides a builder pattern for creating lxpanel layout files
type PanelBuilder struct {
	global  []string
	plugins []pluginBlock
}

// NewPanelBuilder creates a new PanelBuilder with a top edge Global section
func NewPanelBuilder() *PanelBuilder {
	return &PanelBuilder{global: []string{"edge=top"}}
}

// WithGlobal adds a key to the Global section
func (b *PanelBuilder) WithGlobal(key, value string) *PanelBuilder {
	b.global = append(b.global, key+"="+value)
	return b
}

// WithPlugin appends a plugin block with a Config section holding settings
// ("Key=Value")
func (b *PanelBuilder) WithPlugin(pluginType string, settings ...string) *PanelBuilder {
	b.plugins = append(b.plugins, pluginBlock{pluginType: pluginType, settings: settings})
	return b
}

// WithBarePlugin appends a plugin block without a Config section
func (b *PanelBuilder) WithBarePlugin(pluginType string) *PanelBuilder {
	b.plugins = append(b.plugins, pluginBlock{pluginType: pluginType, bare: true})
	return b
}

// Build renders the layout, every section followed by a newline
func (b *PanelBuilder) Build() string {
	var sb strings.Builder

	sb.WriteString("Global {\n")
	for _, line := range b.global {
		fmt.Fprintf(&sb, "  %s\n", line)
	}
	sb.WriteString("}\n")

	for _, p := range b.plugins {
		fmt.Fprintf(&sb, "Plugin {\n  type=%s\n", p.pluginType)
		if !p.bare {
			sb.WriteString("  Config {\n")
			for _, s := range p.settings {
				fmt.Fprintf(&sb, "    %s\n", s)
			}
			sb.WriteString("  }\n")
		}
		sb.WriteString("}\n")
	}

	return sb.String()
}

// DefaultPanel returns the Raspberry Pi OS style layout used across tests:
// menu, volumealsa and dclock.
func DefaultPanel() string {
	return NewPanelBuilder().
		WithPlugin("menu", "image=start-here").
		WithPlugin("volumealsa").
		WithPlugin("dclock", "ClockFmt=%R").
		Build()
}
