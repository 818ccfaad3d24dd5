package serial

// Element identifies the elemental damage tag attached to a Part token, when
// the part's category carries one. An element is derived from where a part
// index falls within its category's elemental block (see elementFromIndex);
// no separate element marker is written into the bit stream.
type Element byte

const (
	ElementNone      Element = 0
	ElementIncendiary Element = 1
	ElementCorrosive  Element = 2
	ElementShock      Element = 3
	ElementCryo       Element = 4
	ElementRadiation  Element = 5
)

var elementNames = map[Element]string{
	ElementNone:       "None",
	ElementIncendiary: "Incendiary",
	ElementCorrosive:  "Corrosive",
	ElementShock:      "Shock",
	ElementCryo:       "Cryo",
	ElementRadiation:  "Radiation",
}

// String returns the element's display name, or "Unknown" for an
// unrecognized tag byte.
func (e Element) String() string {
	if name, ok := elementNames[e]; ok {
		return name
	}
	return "Unknown"
}

// elementFromIndex reports whether partIndex falls in an elemental block
// rather than naming an ordinary part, and if so which element. Category tables that carry
// elemental variants reserve a contiguous index range for this; categories
// without elemental variants never produce a true here.
func elementFromIndex(categoryID int, partIndex uint64) (Element, bool) {
	base, ok := elementTaggedCategories[categoryID]
	if !ok {
		return ElementNone, false
	}
	if partIndex < base || partIndex >= base+5 {
		return ElementNone, false
	}
	return Element(partIndex - base + 1), true
}

// elementTaggedCategories maps a category id to the first part index of its
// 5-entry elemental block (Incendiary..Radiation, in Element order).
// Populated for the weapon categories known to carry elemental variants;
// no other category has an entry.
var elementTaggedCategories = map[int]uint64{
	13: 64, // Assault Rifles
	20: 64, // SMGs
	26: 64, // Snipers
	2:  64, // Pistols
	8:  64, // Shotguns
}
