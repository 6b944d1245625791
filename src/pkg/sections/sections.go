// Package sections merges named, marker-delimited blocks into a PR body.
//
// A block looks like
//
//	<!--- actual-pr-body-section key:<key> start --->
//	<content>
//
//	<!--- actual-pr-body-section key:<key> end --->
//
// Upsert replaces an existing block in place or inserts a new one, and never
// touches text outside the block except for a one-time boundary insertion.
package sections

import (
	"fmt"
	"strings"
)

const (
	// BOUNDARY_MARKER separates human-authored content from bot sections
	BOUNDARY_MARKER = "<!--- actual-bot-sections --->"
	// BOUNDARY_TEXT is inserted once, above the first bot section
	BOUNDARY_TEXT = BOUNDARY_MARKER + "\n<hr />\n_Automated sections below_"
	// BUNDLE_STATS_MARKER is the start of the bundle stats block written by CI
	BUNDLE_STATS_MARKER = "<!--- bundlestats-action-comment key:combined start --->"
)

// Markers are the start and end markers of one section
type Markers struct {
	Start string
	End   string
}

// MarkersFor returns the markers of the section identified by key.
// The key is embedded between fixed delimiters, so distinct keys never share
// a marker.
func MarkersFor(key string) Markers {
	return Markers{
		Start: fmt.Sprintf("<!--- actual-pr-body-section key:%s start --->", key),
		End:   fmt.Sprintf("<!--- actual-pr-body-section key:%s end --->", key),
	}
}

// locate returns the bounds of the first complete block in body, or ok=false.
// The span runs from the last start marker before the first usable end marker,
// so a dangling start left above a block is never swallowed into it.
func (m Markers) locate(body string) (from, to int, ok bool) {
	offset := 0
	for {
		idx := strings.Index(body[offset:], m.End)
		if idx == -1 {
			return 0, 0, false
		}
		endIdx := offset + idx
		if startIdx := strings.LastIndex(body[:endIdx], m.Start); startIdx != -1 {
			return startIdx, endIdx + len(m.End), true
		}
		offset = endIdx + len(m.End)
	}
}

// Options control where a new section goes
type Options struct {
	// InsertBefore is an anchor; a new section goes right before it when present
	InsertBefore string
	// BoundaryMarker and BoundaryText are added once above the first section
	BoundaryMarker string
	BoundaryText   string
}

// DefaultOptions inserts before the bundle stats block under the bot boundary
func DefaultOptions() Options {
	return Options{
		InsertBefore:   BUNDLE_STATS_MARKER,
		BoundaryMarker: BOUNDARY_MARKER,
		BoundaryText:   BOUNDARY_TEXT,
	}
}

// BuildBlock renders a section: start marker, content, blank line, end marker
func BuildBlock(key, content string) string {
	m := MarkersFor(key)
	return strings.Join([]string{m.Start, content, "", m.End, ""}, "\n")
}

// Has reports whether body contains a complete section for key
func Has(body, key string) bool {
	_, _, ok := MarkersFor(key).locate(body)
	return ok
}

// Upsert writes content as the section key of body and returns the new body.
//
// An existing block is replaced in place. Otherwise the block is inserted
// before opts.InsertBefore when that anchor is present, or appended, with one
// blank line of separation. The boundary text is prepended to the block the
// first time a section is added to a body that lacks the boundary marker. An
// empty body becomes the block alone.
func Upsert(body, key, content string, opts Options) string {
	block := strings.TrimSpace(BuildBlock(key, content))

	if from, to, ok := MarkersFor(key).locate(body); ok {
		return body[:from] + block + body[to:]
	}

	if strings.TrimSpace(body) == "" {
		return block
	}

	if opts.BoundaryMarker != "" && opts.BoundaryText != "" && !strings.Contains(body, opts.BoundaryMarker) {
		block = opts.BoundaryText + "\n\n" + block
	}

	if opts.InsertBefore != "" {
		if idx := strings.Index(body, opts.InsertBefore); idx != -1 {
			prefix, suffix := body[:idx], body[idx:]
			return prefix + leadingSeparator(prefix) + block + trailingSeparator(suffix) + suffix
		}
	}

	return body + leadingSeparator(body) + block
}

// leadingSeparator returns what must follow text so one blank line precedes
// the next block
func leadingSeparator(text string) string {
	switch {
	case text == "":
		return ""
	case strings.HasSuffix(text, "\n\n"):
		return ""
	case strings.HasSuffix(text, "\n"):
		return "\n"
	default:
		return "\n\n"
	}
}

// trailingSeparator returns what must precede text so one blank line follows
// the block
func trailingSeparator(text string) string {
	switch {
	case strings.HasPrefix(text, "\n\n"):
		return ""
	case strings.HasPrefix(text, "\n"):
		return "\n"
	default:
		return "\n\n"
	}
}
