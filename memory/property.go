package memory

// PropertyType is an inferred runtime type for one object field, chosen by
// walking a chain of heuristics over the field's raw bytes, from
// strongest (a value in object-index range) to weakest (raw byte-size
// guess).
type PropertyType int

const (
	PropertyUnknown PropertyType = iota
	PropertyBool
	PropertyInt32
	PropertyFloat32
	PropertyString
	PropertyObjectRef
	PropertyArray
	PropertyStruct
)

func (t PropertyType) String() string {
	switch t {
	case PropertyBool:
		return "Bool"
	case PropertyInt32:
		return "Int32"
	case PropertyFloat32:
		return "Float32"
	case PropertyString:
		return "String"
	case PropertyObjectRef:
		return "ObjectRef"
	case PropertyArray:
		return "Array"
	case PropertyStruct:
		return "Struct"
	default:
		return "Unknown"
	}
}

// PropertyDescriptor is one inferred field of a class: its byte offset
// within instances, its inferred type, and the evidence tier that
// produced the inference (lower Tier is stronger evidence).
type PropertyDescriptor struct {
	Name   string
	Offset int
	Type   PropertyType
	Tier   int
}

// InferenceStep is one link in the property-type inference chain: it
// either confidently resolves a type or declines, letting the next,
// weaker step run.
type InferenceStep func(shadow *ObjectShadow, offset int, raw []byte) (PropertyType, bool)

// DefaultInferenceChain orders the built-in steps from strongest evidence
// (a value in object-index range) to weakest (a byte-size guess with no
// other information).
var DefaultInferenceChain = []InferenceStep{
	inferFromObjectRefRange,
	inferFromBooleanPattern,
	inferFromFloatPattern,
	inferFromPrintableRun,
	inferFromSize,
}

// InferProperty runs raw (the field's bytes, read at offset within the
// object) through the inference chain and returns the first confident
// result, tagging it with the tier (1-indexed chain position) that
// produced it.
func InferProperty(shadow *ObjectShadow, offset int, raw []byte) (PropertyType, int) {
	for i, step := range DefaultInferenceChain {
		if t, ok := step(shadow, offset, raw); ok {
			return t, i + 1
		}
	}
	return PropertyUnknown, len(DefaultInferenceChain) + 1
}

func inferFromObjectRefRange(shadow *ObjectShadow, offset int, raw []byte) (PropertyType, bool) {
	if len(raw) < 4 {
		return 0, false
	}
	// A 4-byte object index pointing within a plausible object-count range
	// is the strongest signal: it can only be an object reference.
	v := int32(raw[0]) | int32(raw[1])<<8 | int32(raw[2])<<16 | int32(raw[3])<<24
	// Heuristic bound: object indices are dense and bounded by the live
	// object count, unlike arbitrary int32 field values which tend to be
	// either very small (flags/counters) or much larger.
	if shadow != nil && v > 0 && v < int32(shadow.Index)+1_000_000 && v < 2_000_000 {
		return PropertyObjectRef, true
	}
	return 0, false
}

func inferFromBooleanPattern(_ *ObjectShadow, _ int, raw []byte) (PropertyType, bool) {
	if len(raw) < 1 {
		return 0, false
	}
	if raw[0] == 0 || raw[0] == 1 {
		for _, b := range raw[1:] {
			if b != 0 {
				return 0, false
			}
		}
		return PropertyBool, true
	}
	return 0, false
}

func inferFromFloatPattern(_ *ObjectShadow, _ int, raw []byte) (PropertyType, bool) {
	if len(raw) < 4 {
		return 0, false
	}
	bits := uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16 | uint32(raw[3])<<24
	exp := (bits >> 23) & 0xFF
	// Exponent bytes in a plausible "ordinary game value" range (biased
	// exponent 101..149, magnitudes roughly 1e-8..1e7) are a reasonable signal for an IEEE-754 float as
	// opposed to an arbitrary integer.
	return PropertyFloat32, exp > 100 && exp < 150
}

func inferFromPrintableRun(_ *ObjectShadow, _ int, raw []byte) (PropertyType, bool) {
	if len(raw) < 4 {
		return 0, false
	}
	printable := 0
	for _, b := range raw {
		if b >= 0x20 && b < 0x7F {
			printable++
		}
	}
	return PropertyString, printable == len(raw)
}

func inferFromSize(_ *ObjectShadow, _ int, raw []byte) (PropertyType, bool) {
	switch len(raw) {
	case 4:
		return PropertyInt32, true
	default:
		return PropertyUnknown, true
	}
}
