// Package trio decides whether three cards form a trio: for every attribute the three
// readings are either all equal or pairwise distinct.
package trio

import (
	"fmt"

	"trio.game/internal/cards"
)

// Verdict is the result of checking three cards. Failing is meaningful only when Valid is
// false and names the first attribute, in cards.Attributes order, that broke the rule.
type Verdict struct {
	Valid   bool
	Failing cards.Attribute
}

func (v Verdict) String() string {
	if v.Valid {
		return "valid"
	}
	return fmt.Sprintf("invalid(%s)", v.Failing)
}

// IsValidTrio checks a, b and c against the trio rule.
func IsValidTrio(a, b, c cards.Card) Verdict {
	for _, attr := range cards.Attributes {
		va, vb, vc := a.Attribute(attr), b.Attribute(attr), c.Attribute(attr)
		if va == vb {
			if vc != va {
				return Verdict{Failing: attr}
			}
			continue
		}
		if vc == va || vc == vb {
			return Verdict{Failing: attr}
		}
	}
	return Verdict{Valid: true}
}

// FindFirstTrio scans the occupied cards in ascending index triples (i<j<k) and returns the
// first valid trio. The result is the lexicographically lowest index triple.
func FindFirstTrio(cs []cards.Card) ([3]cards.Card, bool) {
	var found [3]cards.Card
	ok := false
	walk(cs, func(t [3]cards.Card) bool {
		found, ok = t, true
		return false
	})
	return found, ok
}

// FindAllTrios returns every valid trio in the same order FindFirstTrio visits them.
func FindAllTrios(cs []cards.Card) [][3]cards.Card {
	var out [][3]cards.Card
	walk(cs, func(t [3]cards.Card) bool {
		out = append(out, t)
		return true
	})
	return out
}

// Positions returns the slot positions of a trio.
func Positions(t [3]cards.Card) [3]int {
	return [3]int{t[0].Position, t[1].Position, t[2].Position}
}

func walk(cs []cards.Card, yield func([3]cards.Card) bool) {
	n := len(cs)
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				if !IsValidTrio(cs[i], cs[j], cs[k]).Valid {
					continue
				}
				if !yield([3]cards.Card{cs[i], cs[j], cs[k]}) {
					return
				}
			}
		}
	}
}
