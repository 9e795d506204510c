/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/voedger/qonfig/pkg/qdef"
)

var ErrSyntaxError = errors.New("syntax error")

func ErrSyntax(file string, err error) error {
	return fmt.Errorf("%w in «%s»: %w", ErrSyntaxError, file, err)
}

var ErrNoSourcesError = errors.New("no toolkit sources")

func ErrNoSources(dir string) error {
	return qdef.EnrichError(ErrNoSourcesError, "directory «%s» contains no %s files", dir, ToolkitFileExt)
}

var ErrDependencyCycleError = errors.New("toolkit dependency cycle")

func ErrDependencyCycle(path []qdef.ToolkitRef) error {
	names := make([]string, 0, len(path))
	for _, r := range path {
		names = append(names, r.String())
	}
	return qdef.EnrichError(ErrDependencyCycleError, "%s", strings.Join(names, " -> "))
}

var ErrDuplicateSourceError = errors.New("duplicate toolkit source")

func ErrDuplicateSource(ref qdef.ToolkitRef, file, other string) error {
	return qdef.EnrichError(ErrDuplicateSourceError, "toolkit «%v» is declared in «%s» and «%s»", ref, file, other)
}

func errDuplicateOption(what, option string) error {
	return qdef.ErrAlreadyExists("%s: option «%s»", what, option)
}
