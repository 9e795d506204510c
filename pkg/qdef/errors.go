/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdef

import (
	"errors"
	"fmt"
)

func EnrichError(err error, msg string, args ...any) error {
	s := msg
	if len(args) > 0 {
		s = fmt.Sprintf(msg, args...)
	}
	return fmt.Errorf("%w: %s", err, s)
}

var ErrNotFoundError = errors.New("not found")

func ErrNotFound(msg string, args ...any) error {
	return EnrichError(ErrNotFoundError, msg, args...)
}

func ErrTypeNotFound(name string) error {
	return ErrNotFound("type «%s»", name)
}

func ErrValueTypeNotFound(name string) error {
	return ErrNotFound("value type «%s»", name)
}

var ErrAmbiguousError = errors.New("ambiguous name")

func ErrAmbiguous(msg string, args ...any) error {
	return EnrichError(ErrAmbiguousError, msg, args...)
}

var ErrAlreadyExistsError = errors.New("already exists")

func ErrAlreadyExists(msg string, args ...any) error {
	return EnrichError(ErrAlreadyExistsError, msg, args...)
}

var ErrInvalidNameError = errors.New("invalid name")

func ErrInvalidName(msg string, args ...any) error {
	return EnrichError(ErrInvalidNameError, msg, args...)
}

var ErrReservedNameError = errors.New("reserved name")

func ErrReservedName(name string) error {
	return EnrichError(ErrReservedNameError, "«%s»", name)
}

var ErrCircularInheritanceError = errors.New("circular inheritance")

func ErrCircularInheritance(path string) error {
	return EnrichError(ErrCircularInheritanceError, "%s", path)
}

var ErrIncompatibleError = errors.New("incompatible")

func ErrIncompatible(msg string, args ...any) error {
	return EnrichError(ErrIncompatibleError, msg, args...)
}

var ErrInvalidError = errors.New("not valid")

func ErrInvalid(msg string, args ...any) error {
	return EnrichError(ErrInvalidError, msg, args...)
}

var ErrMultiplicityError = errors.New("multiplicity violation")

func ErrMultiplicity(msg string, args ...any) error {
	return EnrichError(ErrMultiplicityError, msg, args...)
}

var ErrRequiredError = errors.New("required but absent")

func ErrRequired(msg string, args ...any) error {
	return EnrichError(ErrRequiredError, msg, args...)
}

var ErrForbiddenError = errors.New("forbidden but specified")

func ErrForbidden(msg string, args ...any) error {
	return EnrichError(ErrForbiddenError, msg, args...)
}

var ErrAbstractError = errors.New("abstract")

func ErrAbstract(msg string, args ...any) error {
	return EnrichError(ErrAbstractError, msg, args...)
}
