/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qparser

// Extension of toolkit source files
const ToolkitFileExt = ".qtd"

const (
	kindAddOn      = "add-on"
	kindElementDef = "element-def"
)

// Count of lookahead tokens for toolkit grammar
const grammarLookahead = 4

// Separator of type names in cycle path
const pathSeparator = " -> "

const valueSessionName = "value"
