/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qpromise

import (
	"errors"

	"github.com/voedger/qonfig/pkg/qdef"
)

var ErrSelfReferenceError = errors.New("self-referential promise")

func ErrSelfReference(key string) error {
	return qdef.EnrichError(ErrSelfReferenceError, "«%s» is already being resolved", key)
}

var ErrBadReferenceError = errors.New("bad external reference")

func ErrBadReference(msg string, args ...any) error {
	return qdef.EnrichError(ErrBadReferenceError, msg, args...)
}
