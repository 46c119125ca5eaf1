package cards

import "fmt"

// DeckSize is the number of distinct cards: 3 readings for each of 4 attributes.
const DeckSize = 81

// Attribute identifies one of the four independent card attributes. Its value is the bit
// shift of the attribute's 2-bit window inside a card value.
type Attribute uint

const (
	Color  Attribute = 0
	Shape  Attribute = 2
	Fill   Attribute = 4
	Number Attribute = 6
)

// Attributes lists every attribute in trio check order.
var Attributes = [4]Attribute{Number, Fill, Shape, Color}

func (a Attribute) String() string {
	switch a {
	case Color:
		return "color"
	case Shape:
		return "shape"
	case Fill:
		return "fill"
	case Number:
		return "number"
	default:
		return fmt.Sprintf("attribute(%d)", uint(a))
	}
}

// ParseAttribute maps the wire name of an attribute back to its value.
func ParseAttribute(s string) (Attribute, bool) {
	switch s {
	case "color":
		return Color, true
	case "shape":
		return Shape, true
	case "fill":
		return Fill, true
	case "number":
		return Number, true
	}
	return 0, false
}

// Card is the content of one occupied board slot.
type Card struct {
	Position int `json:"position"`
	Value    int `json:"value"`
}

func (c Card) Attribute(a Attribute) int { return AttributeOf(c.Value, a) }

func (c Card) String() string {
	return fmt.Sprintf("#%d %s", c.Position, Describe(c.Value))
}

// AttributeOf extracts the reading of attribute a from value. Values outside the 8-bit
// attribute space are a caller error and are not checked.
func AttributeOf(value int, a Attribute) int {
	return (value >> uint(a)) & 0x3
}

// Encode builds a card value from attribute readings in [0,2].
func Encode(color, shape, fill, number int) (int, error) {
	readings := [4]int{color, shape, fill, number}
	for i, a := range [4]Attribute{Color, Shape, Fill, Number} {
		if readings[i] < 0 || readings[i] > 2 {
			return 0, fmt.Errorf("attribute %s out of range [0-2] (%d)", a, readings[i])
		}
	}
	return number<<uint(Number) | fill<<uint(Fill) | shape<<uint(Shape) | color<<uint(Color), nil
}

// MustEncode is Encode for literal readings known to be valid.
func MustEncode(color, shape, fill, number int) int {
	v, err := Encode(color, shape, fill, number)
	if err != nil {
		panic(err)
	}
	return v
}

// Deck returns every card value in ascending order.
func Deck() []int {
	out := make([]int, 0, DeckSize)
	for n := 0; n < 3; n++ {
		for f := 0; f < 3; f++ {
			for s := 0; s < 3; s++ {
				for c := 0; c < 3; c++ {
					out = append(out, MustEncode(c, s, f, n))
				}
			}
		}
	}
	return out
}
