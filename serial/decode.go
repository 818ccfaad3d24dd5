package serial

import (
	"errors"
	"fmt"

	"github.com/monokrome/bl4-sub003/internal/errkind"
)

const maxPartCount = 30

// Decode parses a textual item serial into its decoded token form.
func Decode(text string) (item *DecodedItem, err error) {
	defer func() {
		if err != nil && errors.Is(err, ErrSerialMalformed) {
			err = errkind.NewError(errkind.KindSerialMalformed, err)
		}
	}()
	return decode(text)
}

func decode(text string) (*DecodedItem, error) {
	raw, err := textToBytes(text)
	if err != nil {
		return nil, err
	}
	r := newBitReader(raw)

	format, err := detectFormat(r)
	if err != nil {
		return nil, err
	}

	item := &DecodedItem{Format: format}

	switch format {
	case FormatVarIntFirst:
		code, err := r.readVarInt()
		if err != nil {
			return nil, err
		}
		manufacturer, weaponType, ok := WeaponInfo(code)
		if !ok {
			return nil, fmt.Errorf("%w: unrecognized weapon code %d", ErrSerialMalformed, code)
		}
		item.WeaponCode = code
		item.Manufacturer = manufacturer
		item.WeaponType = weaponType
	case FormatVarBitFirst:
		mfgCode, err := r.readBits(manufacturerFieldBits)
		if err != nil {
			return nil, err
		}
		typeCode, err := r.readBits(weaponTypeFieldBits)
		if err != nil {
			return nil, err
		}
		item.ManufacturerCode = mfgCode
		item.WeaponTypeCode = typeCode
		item.Manufacturer = fmt.Sprintf("mfg#%d", mfgCode)
		item.WeaponType = fmt.Sprintf("type#%d", typeCode)
	}

	levelCode, err := r.readBits(8)
	if err != nil {
		return nil, err
	}
	level, ok := levelFromCode(int(levelCode))
	if !ok {
		return nil, fmt.Errorf("%w: level code %d is not in a valid range", ErrSerialMalformed, levelCode)
	}
	item.Level = level

	categoryID, err := r.readVarInt()
	if err != nil {
		return nil, err
	}
	item.CategoryID = int(categoryID)

	rarityBits, err := r.readBits(3)
	if err != nil {
		return nil, err
	}
	if rarityBits > 4 {
		return nil, fmt.Errorf("%w: rarity tier %d out of range", ErrSerialMalformed, rarityBits)
	}
	item.RarityTier = int(rarityBits)

	partCount, err := r.readVarInt()
	if err != nil {
		return nil, err
	}

	parts := make([]Token, 0, partCount)
	for i := uint64(0); i < partCount; i++ {
		partIndex, err := r.readVarInt()
		if err != nil {
			return nil, err
		}
		tok := Token{Kind: TokenPart, Value: partIndex}
		if el, ok := elementFromIndex(item.CategoryID, partIndex); ok {
			tok.Element = el
		}
		parts = append(parts, tok)
	}
	item.Parts = parts

	return item, nil
}
