package cards

import "testing"

func TestAttributeOf_RangeAndInjective(t *testing.T) {
	for _, a := range Attributes {
		for v := 0; v <= 255; v++ {
			got := AttributeOf(v, a)
			if got < 0 || got > 3 {
				t.Fatalf("AttributeOf(%d, %s)=%d out of range", v, a, got)
			}
			if again := AttributeOf(v, a); again != got {
				t.Fatalf("AttributeOf(%d, %s) not stable: %d then %d", v, a, got, again)
			}
		}
		// Each 2-bit window reading maps back to a distinct value.
		seen := map[int]int{}
		for r := 0; r < 4; r++ {
			v := r << uint(a)
			got := AttributeOf(v, a)
			if prev, ok := seen[got]; ok {
				t.Fatalf("%s: readings %d and %d collide on %d", a, prev, r, got)
			}
			seen[got] = r
			if got != r {
				t.Fatalf("%s: AttributeOf(%d)=%d want %d", a, v, got, r)
			}
		}
	}
}

func TestAttributeWindowsIndependent(t *testing.T) {
	v := MustEncode(2, 1, 0, 2)
	if AttributeOf(v, Color) != 2 || AttributeOf(v, Shape) != 1 || AttributeOf(v, Fill) != 0 || AttributeOf(v, Number) != 2 {
		t.Fatalf("unexpected readings for %d: %+v", v, Describe(v))
	}
	if v != 2<<6|0<<4|1<<2|2 {
		t.Fatalf("unexpected encoding %d", v)
	}
}

func TestEncodeRejectsOutOfRange(t *testing.T) {
	if _, err := Encode(3, 0, 0, 0); err == nil {
		t.Fatalf("expected error for color=3")
	}
	if _, err := Encode(0, 0, -1, 0); err == nil {
		t.Fatalf("expected error for fill=-1")
	}
}

func TestDeck(t *testing.T) {
	d := Deck()
	if len(d) != DeckSize {
		t.Fatalf("deck size=%d want %d", len(d), DeckSize)
	}
	seen := map[int]bool{}
	for _, v := range d {
		if seen[v] {
			t.Fatalf("duplicate card value %d", v)
		}
		seen[v] = true
		if v > 170 {
			t.Fatalf("value %d exceeds encoding space", v)
		}
	}
}

func TestDescribe(t *testing.T) {
	d := Describe(MustEncode(0, 1, 2, 2))
	if got := d.String(); got != "3 red open diamonds" {
		t.Fatalf("describe=%q", got)
	}
	if got := Describe(MustEncode(2, 2, 1, 0)).String(); got != "1 purple striped squiggle" {
		t.Fatalf("describe=%q", got)
	}
	if got := Describe(3).ColorName(); got != "?" {
		t.Fatalf("color name for reading 3=%q", got)
	}
}

func TestParseAttribute(t *testing.T) {
	for _, a := range Attributes {
		got, ok := ParseAttribute(a.String())
		if !ok || got != a {
			t.Fatalf("ParseAttribute(%q)=%v,%v", a.String(), got, ok)
		}
	}
	if _, ok := ParseAttribute("size"); ok {
		t.Fatalf("expected unknown attribute")
	}
}
