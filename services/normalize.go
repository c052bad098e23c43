package services

import (
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// NormalizeTeamName folds a scraped team name into the canonical form used
// for storage and fuzzy matching: ASCII-folded, whitespace collapsed,
// title-cased. Sources spell the same club inconsistently ("VC  münster",
// "VC Münster "), so both sides of every comparison go through this.
func NormalizeTeamName(name string) string {
	folded := unidecode.Unidecode(name)
	collapsed := strings.Join(strings.Fields(folded), " ")
	return titleCaser.String(collapsed)
}
