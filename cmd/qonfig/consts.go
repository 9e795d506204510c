/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package main

const indent = "  "
