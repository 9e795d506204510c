/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdoc

import (
	"errors"

	"github.com/voedger/qonfig/pkg/qdef"
)

var ErrMalformedError = errors.New("malformed document")

func ErrMalformed(file string, err error) error {
	return qdef.EnrichError(ErrMalformedError, "«%s»: %v", file, err)
}

var ErrNoFulfillerError = errors.New("promise can not be fulfilled")

func ErrNoFulfiller(t qdef.IElementDef) error {
	return qdef.EnrichError(ErrNoFulfillerError, "no fulfiller registered for «%v»", t)
}

var ErrUnexpectedContentError = errors.New("unexpected content")

func ErrUnexpectedContent(msg string, args ...any) error {
	return qdef.EnrichError(ErrUnexpectedContentError, msg, args...)
}
