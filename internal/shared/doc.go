// Package shared holds helpers used across sheetcalc packages that do not
// belong to a single domain or layer.
//
// The testutil subpackage provides log capture (BufferedSlogHandler) and
// workbook fixture builders used by package tests.
package shared
