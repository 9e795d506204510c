/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import "fmt"

// Specification of attribute, element value or child role.
type SpecificationType uint8

const (
	// Not specified, should be derived
	SpecificationType_null SpecificationType = iota

	// Must be specified in document
	SpecificationType_Required

	// May be specified in document, default is used if absent
	SpecificationType_Optional

	// Must not be specified in document, default is always used
	SpecificationType_Forbidden

	SpecificationType_count
)

var specificationNames = [SpecificationType_count]string{
	SpecificationType_null:      "null",
	SpecificationType_Required:  "required",
	SpecificationType_Optional:  "optional",
	SpecificationType_Forbidden: "forbidden",
}

func (s SpecificationType) String() string {
	if s < SpecificationType_count {
		return specificationNames[s]
	}
	return fmt.Sprintf("SpecificationType(%d)", s)
}

// Parses specification from "required", "optional" or "forbidden" string.
func ParseSpecificationType(s string) (SpecificationType, error) {
	for spec := SpecificationType_Required; spec < SpecificationType_count; spec++ {
		if specificationNames[spec] == s {
			return spec, nil
		}
	}
	return SpecificationType_null, ErrInvalid("specification «%s»", s)
}

// Derives specification of declared value.
func deriveDeclaredSpecification(spec SpecificationType, hasDefault bool) (SpecificationType, error) {
	switch spec {
	case SpecificationType_null:
		if hasDefault {
			return SpecificationType_Optional, nil
		}
		return SpecificationType_Required, nil
	case SpecificationType_Forbidden:
		if !hasDefault {
			return spec, ErrInvalid("forbidden specification requires default value")
		}
	}
	return spec, nil
}

// Derives specification of modified value from the overridden one.
func deriveModifiedSpecification(overridden, spec SpecificationType, hasNewDefault, hasDefault bool) (SpecificationType, error) {
	switch spec {
	case SpecificationType_null:
		if !hasNewDefault {
			return overridden, nil
		}
		if overridden == SpecificationType_Forbidden {
			return overridden, ErrForbidden("default of forbidden value can not be changed without specification")
		}
		return SpecificationType_Optional, nil
	case SpecificationType_Forbidden:
		if !hasDefault {
			return spec, ErrInvalid("forbidden specification requires default value")
		}
	}
	return spec, nil
}
