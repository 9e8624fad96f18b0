// Package export writes final entry lists as JSON, JSON Lines or an XLSX
// workbook, and validates JSON output against the entry schema.
package export
