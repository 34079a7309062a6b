package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ZaspDragon/timeclock-api/internal/api/metrics"
	"github.com/ZaspDragon/timeclock-api/internal/core/domain"
	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
)

// ReportService runs range aggregations across every person in the store.
type ReportService struct {
	repo  ports.TimeLogRepository
	clock domain.Clock
	log   zerolog.Logger
}

func NewReportService(repo ports.TimeLogRepository, clock domain.Clock, log zerolog.Logger) *ReportService {
	return &ReportService{repo: repo, clock: clock, log: log}
}

type personKey struct {
	name    string
	company string
}

// Run aggregates worked hours per (name, company) over the range. Records
// without a complete clock-in/out pair are excluded from hours and day
// counts but still appear in the detail listing.
func (s *ReportService) Run(ctx context.Context, input ports.ReportInput) (*ports.ReportResult, error) {
	if input.Role != domain.RoleManager {
		return nil, domain.ErrForbidden
	}
	from, to, err := normalizeRange(input.From, input.To, s.clock)
	if err != nil {
		return nil, err
	}

	logs, err := s.repo.QueryRange(ctx, ports.RangeFilter{
		NameContains:    input.Name,
		CompanyContains: input.Company,
		FromDate:        from,
		ToDate:          to,
	})
	if err != nil {
		return nil, fmt.Errorf("query report range: %w", err)
	}

	buckets := make(map[personKey]*ports.PersonSummary)
	result := &ports.ReportResult{Detail: make([]ports.TimeLogView, 0, len(logs))}
	var grand float64

	for _, l := range logs {
		result.Detail = append(result.Detail, newView(l))

		h, ok := l.TotalHours()
		if !ok {
			continue
		}
		key := personKey{name: l.UserName, company: l.Company}
		b, exists := buckets[key]
		if !exists {
			b = &ports.PersonSummary{Name: l.UserName, Company: l.Company}
			buckets[key] = b
		}
		b.Hours += h
		b.Days++
		grand += h
	}

	result.Summary = make([]ports.PersonSummary, 0, len(buckets))
	for _, b := range buckets {
		b.Hours = domain.Round2(b.Hours)
		result.Summary = append(result.Summary, *b)
	}
	sort.Slice(result.Summary, func(i, j int) bool {
		a, b := result.Summary[i], result.Summary[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Company < b.Company
	})
	result.GrandTotal = domain.Round2(grand)

	metrics.ReportsRunTotal.Inc()
	s.log.Info().
		Str("from", from).
		Str("to", to).
		Int("rows", len(result.Detail)).
		Msg("report generated")
	return result, nil
}
