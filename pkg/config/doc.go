// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package config turns raw compile options into an immutable Config.

Raw options come from a loader query string, an hbsmod.toml file or command
line flags. They are collected as Options (every field optional), merged in
order of precedence and finally resolved: defaults are applied field by field,
malformed values fall back to their default, and every configured directory is
checked through a host-provided DirChecker. A missing directory is the only
fatal condition.
*/
package config
