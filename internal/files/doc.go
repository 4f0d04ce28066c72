// Package files discovers input workbooks and names the report files written
// for them.
//
// Example usage:
//
//	discovery := files.NewDiscovery("data")
//	workbooks, err := discovery.FindWorkbooks("inbox")
//	for _, wb := range workbooks {
//	    out := files.ReportPath("reports", wb.Path, valuationDate, domain.ReportFormatExcel)
//	}
package files
