/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qdoc

// Attribute names which bind namespace prefixes
const (
	xmlnsAttribute = "xmlns"
	xmlNamespace   = "http://www.w3.org/XML/1998/namespace"
)

// Separators of role and extension lists in reserved attributes
const listSeparators = ", \t\r\n"

// Tag of synthetic root, which wraps metadata content
const metadataTag = "metadata"
