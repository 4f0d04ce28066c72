// Package weather answers a small set of natural-language questions about
// precipitation workbooks.
//
// Two question shapes are recognised: a district total over selected months
// and a year range (read from the Monthly sheet), and a comparison of two
// states over one ISO week (read from the Daily sheet). Anything else gets a
// fixed fallback answer.
package weather
