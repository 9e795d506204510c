/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import "strconv"

// Numeric with Occurs_Unbounded value.
type Occurs uint16

func (o Occurs) String() string {
	switch o {
	case Occurs_Unbounded:
		return Occurs_UnboundedStr
	default:
		return strconv.FormatUint(uint64(o), intBase)
	}
}

// Parses occurs from decimal or "inf" string.
func ParseOccurs(s string) (Occurs, error) {
	if s == Occurs_UnboundedStr {
		return Occurs_Unbounded, nil
	}
	const wordBits = 16
	i, err := strconv.ParseUint(s, intBase, wordBits)
	if err != nil {
		return 0, ErrInvalid("occurs «%s»", s)
	}
	if Occurs(i) == Occurs_Unbounded {
		return 0, ErrInvalid("occurs «%s» is too big", s)
	}
	return Occurs(i), nil
}
