/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qcatalog

import "github.com/untillpro/goutils/logger"

// Catalog file name, which is looked for in workspace root
const DefaultCatalogFile = "qonfig.yaml"

var logLevels = map[string]logger.TLogLevel{
	"none":    logger.LogLevelNone,
	"error":   logger.LogLevelError,
	"warning": logger.LogLevelWarning,
	"info":    logger.LogLevelInfo,
	"verbose": logger.LogLevelVerbose,
	"trace":   logger.LogLevelTrace,
}
