// Package panel knows the layout of an lxpanel panels/panel file well enough
// to add, find and remove a single plugin block.
package panel

import (
	"errors"
	"fmt"
	"strings"

	"showip.dev/cli/internal/core/textwindow"
)

// nextBlock is the end marker used when splicing after an anchor block.
const nextBlock = "Plugin"

// blockClose ends a top-level block. Nested sections are indented, so their
// closing brace never matches.
const blockClose = "\n}"

// ErrAnchorNotFound is returned when no anchor block followed by another
// plugin block exists in the document.
var ErrAnchorNotFound = errors.New("no anchor block found")

// Block renders a plugin block with an empty Config section.
func Block(pluginType string) string {
	return "Plugin {\n  type=" + pluginType + "\n  Config {\n  }\n}"
}

// BareBlock renders a plugin block without a Config section.
func BareBlock(pluginType string) string {
	return "Plugin {\n  type=" + pluginType + "\n}"
}

func header(pluginType string) string {
	return "Plugin {\n  type=" + pluginType + "\n"
}

// Anchor names the plugin block after which a new block is inserted.
type Anchor struct {
	Type string
}

// Anchors builds anchors from plugin type names.
func Anchors(types ...string) []Anchor {
	anchors := make([]Anchor, 0, len(types))
	for _, t := range types {
		anchors = append(anchors, Anchor{Type: t})
	}
	return anchors
}

// HasPlugin reports whether a block of pluginType is present.
func HasPlugin(doc, pluginType string) bool {
	return strings.Contains(doc, header(pluginType))
}

// InsertAfter places a block for pluginType right after the first anchor
// block that is followed by another plugin block. The anchor block is matched
// whole, settings included. Whatever sat between the anchor block and the
// next block is replaced.
func InsertAfter(doc, pluginType string, anchors []Anchor) (string, Anchor, error) {
	if len(anchors) == 0 {
		return "", Anchor{}, fmt.Errorf("%w: no anchors configured", ErrAnchorNotFound)
	}

	lastErr := textwindow.ErrStartNotFound
	for _, anchor := range anchors {
		block, ok := locateBlock(doc, anchor.Type)
		if !ok {
			continue
		}
		w, err := textwindow.Find(doc, block.Content(doc)+"\n", nextBlock)
		if err != nil {
			// The anchor exists but no block follows it. That outranks
			// later anchors that are missing altogether.
			lastErr = textwindow.ErrEndNotFound
			continue
		}
		return textwindow.Splice(doc, w, Block(pluginType)+"\n"), anchor, nil
	}

	return "", Anchor{}, fmt.Errorf("%w (%s): %w", ErrAnchorNotFound, anchorNames(anchors), lastErr)
}

// Remove deletes the pluginType block together with its trailing newline.
func Remove(doc, pluginType string) (string, bool) {
	block, ok := locateBlock(doc, pluginType)
	if !ok {
		return doc, false
	}
	if block.End < len(doc) && doc[block.End] == '\n' {
		block.End++
	}
	return textwindow.Splice(doc, block, ""), true
}

// PluginConfig returns the body of the Config section of the pluginType
// block.
func PluginConfig(doc, pluginType string) (string, bool) {
	block, ok := locateBlock(doc, pluginType)
	if !ok {
		return "", false
	}
	// The closer is anchored to a line start so nested sections, indented
	// one level deeper, do not end the body early.
	body, ok := textwindow.ExtractBetween(block.Content(doc), "  Config {", "\n  }")
	if !ok || body == "" {
		return body, ok
	}
	return strings.TrimPrefix(body, "\n") + "\n", true
}

// locateBlock returns the window spanning a whole block, from "Plugin {" to
// its closing brace.
func locateBlock(doc, pluginType string) (textwindow.Window, bool) {
	h := header(pluginType)
	start := strings.Index(doc, h)
	if start < 0 {
		return textwindow.Window{}, false
	}
	// A bare block closes right after the header, on the header's newline.
	from := start + len(h) - 1
	end := strings.Index(doc[from:], blockClose)
	if end < 0 {
		return textwindow.Window{}, false
	}
	return textwindow.Window{Start: start, End: from + end + len(blockClose)}, true
}

func anchorNames(anchors []Anchor) string {
	names := make([]string, 0, len(anchors))
	for _, a := range anchors {
		names = append(names, a.Type)
	}
	return strings.Join(names, ", ")
}
