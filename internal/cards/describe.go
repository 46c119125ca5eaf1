package cards

import "fmt"

// Description is the rendering view of a card value. Readings are kept raw (0..3).
type Description struct {
	Color  int `json:"color"`
	Shape  int `json:"shape"`
	Fill   int `json:"fill"`
	Number int `json:"number"`
}

var (
	colorNames = [4]string{"red", "green", "purple", "?"}
	shapeNames = [4]string{"oval", "diamond", "squiggle", "?"}
	fillNames  = [4]string{"solid", "striped", "open", "?"}
)

func Describe(value int) Description {
	return Description{
		Color:  AttributeOf(value, Color),
		Shape:  AttributeOf(value, Shape),
		Fill:   AttributeOf(value, Fill),
		Number: AttributeOf(value, Number),
	}
}

func (d Description) ColorName() string { return colorNames[d.Color&0x3] }
func (d Description) ShapeName() string { return shapeNames[d.Shape&0x3] }
func (d Description) FillName() string  { return fillNames[d.Fill&0x3] }

// Count is the number of symbols printed on the card.
func (d Description) Count() int { return d.Number + 1 }

func (d Description) String() string {
	shape := d.ShapeName()
	if d.Count() > 1 && shape != "?" {
		shape += "s"
	}
	return fmt.Sprintf("%d %s %s %s", d.Count(), d.ColorName(), d.FillName(), shape)
}
