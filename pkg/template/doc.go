// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package template defines the serializable form of a compiled Handlebars
template.

Lower converts a raymond parse tree into a Program made of text, mustache,
block and partial nodes. Generated modules embed Programs as JSON (Marshal)
so that the runtime can execute them without parsing the template again.
The top-level Program carries a Format version that runtimes check before
executing it.
*/
package template
