package trio

import (
	"testing"

	"trio.game/internal/cards"
)

// oracle is the arithmetic form of the rule: readings in [0,2] are all equal or all
// distinct exactly when their sum is a multiple of 3.
func oracle(a, b, c int) bool {
	for _, attr := range cards.Attributes {
		if (cards.AttributeOf(a, attr)+cards.AttributeOf(b, attr)+cards.AttributeOf(c, attr))%3 != 0 {
			return false
		}
	}
	return true
}

func card(pos, value int) cards.Card { return cards.Card{Position: pos, Value: value} }

func board(values ...int) []cards.Card {
	out := make([]cards.Card, len(values))
	for i, v := range values {
		out[i] = card(i, v)
	}
	return out
}

// capSet grows a board without any valid trio other than those formed by fixed.
func capSet(t *testing.T, fixed map[int]int, size int) []int {
	t.Helper()
	values := make([]int, size)
	used := map[int]bool{}
	placed := []int{}
	for pos, v := range fixed {
		values[pos] = v
		used[v] = true
		placed = append(placed, v)
	}
	for pos := 0; pos < size; pos++ {
		if _, ok := fixed[pos]; ok {
			continue
		}
		chosen := -1
		for _, v := range cards.Deck() {
			if used[v] {
				continue
			}
			clean := true
			for i := 0; i < len(placed) && clean; i++ {
				for j := i + 1; j < len(placed); j++ {
					if oracle(placed[i], placed[j], v) {
						clean = false
						break
					}
				}
			}
			if clean {
				chosen = v
				break
			}
		}
		if chosen < 0 {
			t.Fatalf("no candidate for slot %d", pos)
		}
		values[pos] = chosen
		used[chosen] = true
		placed = append(placed, chosen)
	}
	return values
}

func TestIsValidTrio_MatchesOracleOnWholeDeck(t *testing.T) {
	deck := cards.Deck()
	for i := 0; i < len(deck); i++ {
		for j := i + 1; j < len(deck); j++ {
			for k := j + 1; k < len(deck); k++ {
				got := IsValidTrio(card(0, deck[i]), card(1, deck[j]), card(2, deck[k])).Valid
				if got != oracle(deck[i], deck[j], deck[k]) {
					t.Fatalf("IsValidTrio(%d,%d,%d)=%v", deck[i], deck[j], deck[k], got)
				}
			}
		}
	}
}

func TestIsValidTrio_PermutationInvariant(t *testing.T) {
	deck := cards.Deck()
	perms := [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for i := 0; i < len(deck); i += 2 {
		for j := i + 1; j < len(deck); j += 3 {
			for k := j + 1; k < len(deck); k += 5 {
				cs := [3]cards.Card{card(0, deck[i]), card(1, deck[j]), card(2, deck[k])}
				want := IsValidTrio(cs[0], cs[1], cs[2]).Valid
				for _, p := range perms {
					if got := IsValidTrio(cs[p[0]], cs[p[1]], cs[p[2]]).Valid; got != want {
						t.Fatalf("verdict changed under permutation %v for %v: %v vs %v", p, cs, got, want)
					}
				}
			}
		}
	}
}

func TestIsValidTrio_TwoEqualOneDifferentFails(t *testing.T) {
	// number and fill all equal, shape readings (1,2,0) all distinct, color readings (1,1,2).
	a := card(0, cards.MustEncode(1, 1, 0, 0))
	b := card(1, cards.MustEncode(1, 2, 0, 0))
	c := card(2, cards.MustEncode(2, 0, 0, 0))
	v := IsValidTrio(a, b, c)
	if v.Valid {
		t.Fatalf("expected invalid verdict")
	}
	if v.Failing != cards.Color {
		t.Fatalf("failing attribute=%s want color", v.Failing)
	}

	// Shape readings (1,2,0) alone are fine.
	c.Value = cards.MustEncode(1, 0, 0, 0)
	if v := IsValidTrio(a, b, c); !v.Valid {
		t.Fatalf("expected valid verdict, got %s", v)
	}
}

func TestIsValidTrio_ReportsFirstAttributeInCheckOrder(t *testing.T) {
	// number (0,0,1) and color (0,0,1) both fail; number is checked first.
	a := card(0, cards.MustEncode(0, 0, 0, 0))
	b := card(1, cards.MustEncode(0, 1, 1, 0))
	c := card(2, cards.MustEncode(1, 2, 2, 1))
	if v := IsValidTrio(a, b, c); v.Valid || v.Failing != cards.Number {
		t.Fatalf("verdict=%s want invalid(number)", v)
	}
}

func TestFindFirstTrio_SingleTrio(t *testing.T) {
	fixed := map[int]int{
		2: cards.MustEncode(0, 0, 0, 0),
		5: cards.MustEncode(1, 1, 1, 1),
		7: cards.MustEncode(2, 2, 2, 2),
	}
	values := capSet(t, fixed, 8)

	trios := 0
	for i := 0; i < 8; i++ {
		for j := i + 1; j < 8; j++ {
			for k := j + 1; k < 8; k++ {
				if oracle(values[i], values[j], values[k]) {
					trios++
				}
			}
		}
	}
	if trios != 1 {
		t.Fatalf("fixture has %d trios, want 1", trios)
	}

	got, ok := FindFirstTrio(board(values...))
	if !ok {
		t.Fatalf("expected a trio")
	}
	if p := Positions(got); p != [3]int{2, 5, 7} {
		t.Fatalf("positions=%v want [2 5 7]", p)
	}
	if all := FindAllTrios(board(values...)); len(all) != 1 {
		t.Fatalf("FindAllTrios=%d want 1", len(all))
	}
}

func TestFindFirstTrio_None(t *testing.T) {
	values := capSet(t, nil, 12)
	if _, ok := FindFirstTrio(board(values...)); ok {
		t.Fatalf("expected no trio on a cap set")
	}
	if all := FindAllTrios(board(values...)); len(all) != 0 {
		t.Fatalf("FindAllTrios=%d want 0", len(all))
	}
}

func TestFindFirstTrio_LowestTripleAndSparseBoard(t *testing.T) {
	// Two disjoint trios; the one starting at the lower index wins. Positions are sparse,
	// as on a board with empty slots.
	cs := []cards.Card{
		card(1, cards.MustEncode(0, 0, 0, 0)),
		card(3, cards.MustEncode(0, 1, 0, 0)),
		card(4, cards.MustEncode(1, 1, 1, 1)),
		card(8, cards.MustEncode(0, 2, 0, 0)),
		card(9, cards.MustEncode(2, 2, 2, 2)),
	}
	got, ok := FindFirstTrio(cs)
	if !ok {
		t.Fatalf("expected a trio")
	}
	if p := Positions(got); p != [3]int{1, 3, 8} {
		t.Fatalf("positions=%v want [1 3 8]", p)
	}
	again, _ := FindFirstTrio(cs)
	if again != got {
		t.Fatalf("result not deterministic: %v vs %v", again, got)
	}
}

func TestFindFirstTrio_SmallBoards(t *testing.T) {
	if _, ok := FindFirstTrio(nil); ok {
		t.Fatalf("empty board has no trio")
	}
	if _, ok := FindFirstTrio(board(0, 1)); ok {
		t.Fatalf("two cards have no trio")
	}
}
