// Package exporter renders result tables for download and for the CLI.
//
// Every format implements Writer:
//
//	CSVWriter     comma separated values, optional UTF-8 BOM for Excel
//	ExcelWriter   single-sheet xlsx with a styled, frozen, filterable header
//	JSONWriter    {"rows": [...]} with one object per row
//	PDFWriter     landscape table report with title and page numbers
//
// WriteFile picks the writer from the file extension. WriteText prints an
// aligned table for terminals.
package exporter
