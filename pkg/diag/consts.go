/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package diag

const pathSeparator = "/"

var severityNames = map[Severity]string{
	SeverityInfo:    "info",
	SeverityWarning: "warning",
	SeverityError:   "error",
}
