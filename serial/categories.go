package serial

// Category names a part pool's gear family. IDs are not contiguous: the
// source game leaves literal gaps and occasional reused "gap filler" slots,
// preserved here exactly so that a category ID round-trips to the same name
// whether or not the numbering looks tidy.
type Category struct {
	ID   int
	Name string
}

// categoryNames mirrors the category-id table of the game this format
// belongs to: a sparse map from the category id embedded in a serial to its
// display name. Gaps in the id space (e.g. 1, 24) are real and intentional
// in the source data, not omissions here.
var categoryNames = map[int]string{
	2:  "Pistols",
	3:  "Pistols",
	4:  "Pistols",
	5:  "Pistols",
	6:  "Pistols",
	7:  "Pistols",
	8:  "Shotguns",
	9:  "Shotguns",
	10: "Shotguns",
	11: "Shotguns",
	12: "Bor Shotgun",
	13: "Assault Rifles",
	14: "Assault Rifles",
	15: "Assault Rifles",
	16: "Assault Rifles",
	17: "Assault Rifles",
	18: "Assault Rifles",
	19: "Maliwan Shotgun",
	20: "SMGs",
	21: "SMGs",
	22: "SMGs",
	23: "SMGs",
	25: "Bor Sniper",
	26: "Snipers",
	27: "Snipers",
	28: "Snipers",
	29: "Snipers",
	44:  "Dark Siren Class Mod",
	55:  "Paladin Class Mod",
	97:  "Gravitar Class Mod",
	140: "Exo Soldier Class Mod",
	151: "Firmware",
	244: "Heavy Weapons",
	245: "Heavy Weapons",
	246: "Heavy Weapons",
	247: "Heavy Weapons",
	279: "Shields",
	280: "Shields",
	281: "Shields",
	282: "Shields",
	283: "Shields",
	284: "Shields",
	285: "Shields",
	286: "Shields",
	287: "Shields",
	288: "Shields",
	289: "Shields",
	300: "Gadgets",
	310: "Gear",
	320: "Gadgets",
	330: "Gear",
	400: "Enhancements",
	401: "Enhancements",
	402: "Enhancements",
	403: "Enhancements",
	404: "Enhancements",
	405: "Enhancements",
	406: "Enhancements",
	407: "Enhancements",
	408: "Enhancements",
	409: "Enhancements",
}

// CategoryName returns the display name for categoryID, and false if the id
// is not one this codec recognizes.
func CategoryName(categoryID int) (string, bool) {
	name, ok := categoryNames[categoryID]
	return name, ok
}

// weaponTypeTable maps the first VarInt token of a weapon-format serial to
// a (manufacturer, weapon type) pair. It is a direct lookup, not a
// computation: the source format assigns these pairs arbitrarily and they
// must be matched exactly, gaps and all.
var weaponTypeTable = map[uint64][2]string{
	2:  {"Jakobs", "Shotgun"},
	3:  {"Torgue", "Shotgun"},
	4:  {"Hyperion", "Shotgun"},
	5:  {"Tediore", "Shotgun"},
	6:  {"Maliwan", "Shotgun"},
	7:  {"Vladof", "Shotgun"},
	8:  {"Jakobs", "Shotgun"},
	9:  {"Torgue", "Shotgun"},
	10: {"Tediore", "Shotgun"},
	11: {"Ripper", "Shotgun"},
	12: {"Jakobs", "Pistol"},
	13: {"Vladof", "AssaultRifle"},
	14: {"Jakobs", "AssaultRifle"},
	15: {"Torgue", "AssaultRifle"},
	16: {"Dahl", "AssaultRifle"},
	17: {"Tediore", "AssaultRifle"},
	18: {"Ripper", "AssaultRifle"},
	19: {"Maliwan", "Shotgun"},
	20: {"Dahl", "SMG"},
	21: {"Maliwan", "SMG"},
	22: {"Tediore", "SMG"},
	23: {"Hyperion", "SMG"},
	25: {"Ripper", "Sniper"},
	26: {"Jakobs", "Sniper"},
	27: {"Vladof", "Sniper"},
	28: {"Dahl", "Sniper"},
	29: {"Maliwan", "Sniper"},
}

// WeaponInfo returns the (manufacturer, weapon type) pair named by the
// serial's leading VarInt token, for weapon-format serials.
func WeaponInfo(firstVarInt uint64) (manufacturer, weaponType string, ok bool) {
	v, found := weaponTypeTable[firstVarInt]
	if !found {
		return "", "", false
	}
	return v[0], v[1], true
}
