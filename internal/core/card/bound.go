package card

import (
	"strings"

	pstrings "hubconnect/internal/platform/strings"
)

const slot = "{0}"

func templateLen(tmpl string) int {
	return pstrings.RuneLen(strings.ReplaceAll(tmpl, slot, ""))
}

// Bound fills the {0} slot of tmpl with variable so the result fits in limit runes
//
// the untruncated text wins when it fits; otherwise only the variable is
// shortened. When the template text alone is longer than limit, the composed
// string is ellipsized and overflow is true
func Bound(tmpl, variable string, limit int) (out string, overflow bool) {
	full := strings.ReplaceAll(tmpl, slot, variable)
	if pstrings.RuneLen(full) <= limit {
		return full, false
	}
	fixed := templateLen(tmpl)
	slots := strings.Count(tmpl, slot)
	if slots == 0 || fixed > limit {
		return pstrings.Ellipsize(full, limit), true
	}
	room := (limit - fixed) / slots
	return strings.ReplaceAll(tmpl, slot, pstrings.Ellipsize(variable, room)), false
}
