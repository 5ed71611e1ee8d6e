package fontbuild

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"glyphsheet/internal/config"
	"glyphsheet/internal/failure"
)

// singleLookup holds the one-token substitutions. A ligature lookup
// cannot carry them, so they live in their own lookup that the liga
// feature runs after every ligature.
const singleLookup = "single_tokens"

type rule struct {
	text   string
	tokens int
}

// Features renders the liga feature for every named slot that carries a
// ligature. Each ligature is also matched when followed by a space, so
// "pona " collapses to a single glyph. Longer sequences come first so a
// ligature is never shadowed by one of its prefixes.
func Features(slots []config.GlyphSlot) string {
	var rules []rule
	var singles []string
	for _, s := range slots {
		if !s.Named() || len(s.Ligature) == 0 {
			continue
		}
		seq := s.LigatureText()
		if len(s.Ligature) == 1 {
			singles = append(singles, fmt.Sprintf("sub %s by %s;", seq, s.Name))
		} else {
			rules = append(rules, rule{fmt.Sprintf("sub %s by %s;", seq, s.Name), len(s.Ligature)})
		}
		rules = append(rules, rule{fmt.Sprintf("sub %s space by %s;", seq, s.Name), len(s.Ligature) + 1})
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].tokens > rules[j].tokens
	})

	var b strings.Builder
	if len(singles) > 0 {
		fmt.Fprintf(&b, "lookup %s {\n", singleLookup)
		for _, r := range singles {
			b.WriteString("  ")
			b.WriteString(r)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "} %s;\n\n", singleLookup)
	}
	b.WriteString("feature liga {\n")
	for _, r := range rules {
		b.WriteString("  ")
		b.WriteString(r.text)
		b.WriteString("\n")
	}
	if len(singles) > 0 {
		fmt.Fprintf(&b, "  lookup %s;\n", singleLookup)
	}
	b.WriteString("} liga;\n")
	return b.String()
}

// WriteFeatures writes the feature file for slots to path.
func WriteFeatures(path string, slots []config.GlyphSlot) error {
	if err := os.WriteFile(path, []byte(Features(slots)), 0644); err != nil {
		return failure.IO("write features", path, err)
	}
	return nil
}
