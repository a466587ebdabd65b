package utils

import (
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Slugify turns a user-supplied match or agent name into a URL-safe slug
// ("Leduc Night #3" -> "leduc-night-3"). Slugs are stored next to the raw
// name so log archives and list views have stable readable keys.
func Slugify(name string) string {
	return slug.Make(name)
}

// DisplayName derives a human-readable title from a machine game-type name
// ("leduc-holdem" -> "Leduc Holdem"). Used when seeding the catalog.
func DisplayName(machineName string) string {
	return titleCaser.String(strings.ReplaceAll(machineName, "-", " "))
}
