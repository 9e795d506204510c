/*
 * Copyright (c) 2023-present unTill Pro, Ltd.
 */

package qpromise

// Placeholder attribute, which keeps reference to external content
const DefaultRefAttribute = "ref"

// Separates file and xpath selector in reference: `file.xml#/bundle/*[2]`
const FragmentSeparator = "#"
