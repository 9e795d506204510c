/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qcatalog

import (
	"errors"

	"github.com/voedger/qonfig/pkg/qdef"
)

var ErrInvalidCatalogError = errors.New("invalid catalog")

func ErrInvalidCatalog(msg string, args ...any) error {
	return qdef.EnrichError(ErrInvalidCatalogError, msg, args...)
}
