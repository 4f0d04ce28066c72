// Package spreadsheet reads workbook sheets into header-addressed rows and
// converts raw cell text into typed values.
//
// Cells are read unformatted, so dates arrive either as Excel serial numbers
// or as text, and numbers arrive without thousands separators applied by a
// number format. Header lookup is exact first and falls back to a trimmed,
// case-insensitive match.
//
// Conversion follows two policies. Numeric cells that cannot be parsed become
// null rather than failing the load. Date cells that are non-empty but
// unparseable are reported to the caller, which decides whether that is a
// data format error.
package spreadsheet
