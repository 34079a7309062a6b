package ports

import "context"

// ReportInput carries the manager report parameters. Name and Company are
// substring filters; empty means no filter.
type ReportInput struct {
	Role     string
	From     string
	To       string
	Name     string
	Company  string
}

// PersonSummary is one per-person bucket in the range aggregation. Days
// counts only records that contributed a defined total.
type PersonSummary struct {
	Name    string
	Company string
	Hours   float64
	Days    int
}

// ReportResult is the manager view over a date range: per-person summary,
// the full detail listing (including incomplete records), and the grand
// total over all defined totals.
type ReportResult struct {
	Summary    []PersonSummary
	Detail     []TimeLogView
	GrandTotal float64
}

// ReportService runs range aggregations across all persons. Manager only.
type ReportService interface {
	Run(ctx context.Context, input ReportInput) (*ReportResult, error)
}
