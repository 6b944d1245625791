// Package labels derives the bot-managed label set of a pull request.
//
// The catalog is the fixed set of labels the bot owns. Any label whose name is
// not in the catalog is foreign and is never added or removed by the bot.
package labels

import (
	"regexp"
	"strings"

	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"
)

// Key identifies a catalog entry independently of its display name
type Key string

const (
	KeyWIP                Key = "wip"
	KeyReadyForReview     Key = "readyForReview"
	KeyApproved           Key = "approved"
	KeyChangesRequested   Key = "changesRequested"
	KeyNeedsMoreApprovals Key = "needsMoreApprovals"
	KeyMerged             Key = "merged"
	KeyFailingCI          Key = "failingCI"
)

// Label is a single catalog entry
type Label struct {
	Key         Key
	Name        string
	Color       string
	Description string

	// titlePattern is set for entries that are also detected from the PR title
	titlePattern *regexp.Regexp
}

// MatchesTitle reports whether the title carries this label's title marker
func (l Label) MatchesTitle(title string) bool {
	return l.titlePattern != nil && l.titlePattern.MatchString(title)
}

// StripTitle removes the leading title marker (possibly repeated) from title
func (l Label) StripTitle(title string) string {
	if l.titlePattern == nil {
		return title
	}
	return l.titlePattern.ReplaceAllString(title, "")
}

// HexColor returns the colour without '#' in upper case, as the API expects it
func (l Label) HexColor() string {
	return strings.ToUpper(strings.TrimPrefix(l.Color, "#"))
}

// Model converts the entry to the repository label model
func (l Label) Model() models.Label {
	return models.Label{
		Name:        l.Name,
		Color:       l.HexColor(),
		Description: l.Description,
	}
}

// Catalog is an immutable, ordered set of labels
type Catalog struct {
	entries []Label
	byKey   map[Key]Label
	byName  map[string]Label
}

// NewCatalog builds a catalog, keeping the declaration order of entries
func NewCatalog(entries ...Label) *Catalog {
	c := &Catalog{
		entries: make([]Label, 0, len(entries)),
		byKey:   make(map[Key]Label, len(entries)),
		byName:  make(map[string]Label, len(entries)),
	}
	for _, e := range entries {
		c.entries = append(c.entries, e)
		c.byKey[e.Key] = e
		c.byName[e.Name] = e
	}
	return c
}

// wipPattern matches "[WIP]", "WIP:" or "WIP " at the start of a title, repeated
var wipPattern = regexp.MustCompile(`(?i)^\s*(\[WIP\]\s*|WIP:\s*|WIP\s+)+`)

// Default is the catalog the bot manages
var Default = NewCatalog(
	Label{
		Key:          KeyWIP,
		Name:         ":construction: WIP",
		Color:        "#FBCA04",
		Description:  "Still under development, not yet ready for review",
		titlePattern: wipPattern,
	},
	Label{
		Key:         KeyReadyForReview,
		Name:        ":mag: Ready for review",
		Color:       "#334796",
		Description: "Ready for review",
	},
	Label{
		Key:         KeyApproved,
		Name:        ":white_check_mark: Approved",
		Color:       "#0E8A16",
		Description: "Has been reviewed, approved and is ready for merge",
	},
	Label{
		Key:         KeyChangesRequested,
		Name:        ":warning: Changes requested",
		Color:       "#AA2626",
		Description: "Has been reviewed, and changes have been requested",
	},
	Label{
		Key:         KeyNeedsMoreApprovals,
		Name:        ":star2: Needs more approvals",
		Color:       "#96C823",
		Description: "Needs more approvals",
	},
	Label{
		Key:         KeyMerged,
		Name:        ":sparkles: Merged",
		Color:       "#6F42C1",
		Description: "Merged successfully",
	},
	Label{
		Key:         KeyFailingCI,
		Name:        ":x: Failing CI",
		Color:       "#F92F60",
		Description: "There are failing checks that must be fixed before it can be reviewed",
	},
)

// Get returns the entry for key
func (c *Catalog) Get(key Key) (Label, bool) {
	l, ok := c.byKey[key]
	return l, ok
}

// All returns a copy of the entries in declaration order
func (c *Catalog) All() []Label {
	out := make([]Label, len(c.entries))
	copy(out, c.entries)
	return out
}

// WIP returns the entry that carries the title pattern
func (c *Catalog) WIP() Label {
	return c.byKey[KeyWIP]
}

// IsManaged reports whether a label name belongs to the catalog
func (c *Catalog) IsManaged(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Names maps keys to display names, skipping unknown keys
func (c *Catalog) Names(keys []Key) []string {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if l, ok := c.byKey[k]; ok {
			names = append(names, l.Name)
		}
	}
	return names
}

// Foreign returns the labels in existing that the catalog does not own
func (c *Catalog) Foreign(existing []string) []string {
	foreign := make([]string, 0, len(existing))
	for _, name := range existing {
		if !c.IsManaged(name) {
			foreign = append(foreign, name)
		}
	}
	return foreign
}

// Apply returns the full label set to send with a replace call: the foreign
// labels already present followed by the catalog names for keys.
func (c *Catalog) Apply(existing []string, keys []Key) []string {
	return append(c.Foreign(existing), c.Names(keys)...)
}

// IsWIP reports whether title starts with a WIP marker
func IsWIP(title string) bool {
	return Default.WIP().MatchesTitle(title)
}

// StripWIP removes any leading WIP markers from title
func StripWIP(title string) string {
	return Default.WIP().StripTitle(title)
}
