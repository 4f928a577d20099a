// Package exporter renders pipeline results for people and spreadsheets.
//
// AnswerWriter prints the question answers as plain text. CSVWriter exports
// the unified table. ChartWorkbook draws the four report charts into an
// .xlsx workbook with excelize. WritePreview prints the head and shape of a
// table.
package exporter
