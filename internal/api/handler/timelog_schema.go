package handler

import (
	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
)

// --- Request types ---

type stampRequest struct {
	Field string `json:"field" validate:"required,oneof=clock_in lunch_out end_lunch clock_out"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal service changes.

type stampAvailabilityResponse struct {
	ClockIn  bool `json:"clock_in"`
	LunchOut bool `json:"lunch_out"`
	EndLunch bool `json:"end_lunch"`
	ClockOut bool `json:"clock_out"`
}

// timeLogResponse renders one day record. Derived fields are pointers:
// absent means "cannot compute", which is different from zero.
type timeLogResponse struct {
	Date         string                    `json:"date"`
	Day          string                    `json:"day"`
	Name         string                    `json:"name"`
	Company      string                    `json:"company"`
	ClockIn      string                    `json:"clock_in"`
	LunchOut     string                    `json:"lunch_out"`
	EndLunch     string                    `json:"end_lunch"`
	ClockOut     string                    `json:"clock_out"`
	Notes        string                    `json:"notes"`
	LunchMinutes *int                      `json:"lunch_minutes"`
	TotalHours   *float64                  `json:"total_hours"`
	Status       string                    `json:"status"`
	Can          stampAvailabilityResponse `json:"can"`
}

type rangeResponse struct {
	Data       []timeLogResponse `json:"data"`
	TotalHours float64           `json:"total_hours"`
	Count      int               `json:"count"`
}

type personSummaryResponse struct {
	Name    string  `json:"name"`
	Company string  `json:"company"`
	Hours   float64 `json:"hours"`
	Days    int     `json:"days"`
}

type reportResponse struct {
	Summary    []personSummaryResponse `json:"summary"`
	Detail     []timeLogResponse       `json:"detail"`
	GrandTotal float64                 `json:"grand_total"`
	Count      int                     `json:"count"`
}

// --- View → response mapping ---

func toTimeLogResponse(v *ports.TimeLogView) timeLogResponse {
	return timeLogResponse{
		Date:         v.Date,
		Day:          v.Day,
		Name:         v.Name,
		Company:      v.Company,
		ClockIn:      v.ClockIn,
		LunchOut:     v.LunchOut,
		EndLunch:     v.EndLunch,
		ClockOut:     v.ClockOut,
		Notes:        v.Notes,
		LunchMinutes: v.LunchMinutes,
		TotalHours:   v.TotalHours,
		Status:       v.Status,
		Can: stampAvailabilityResponse{
			ClockIn:  v.Can.ClockIn,
			LunchOut: v.Can.LunchOut,
			EndLunch: v.Can.EndLunch,
			ClockOut: v.Can.ClockOut,
		},
	}
}

func toTimeLogResponses(views []ports.TimeLogView) []timeLogResponse {
	out := make([]timeLogResponse, len(views))
	for i := range views {
		out[i] = toTimeLogResponse(&views[i])
	}
	return out
}

func toReportResponse(r *ports.ReportResult) reportResponse {
	summary := make([]personSummaryResponse, len(r.Summary))
	for i, s := range r.Summary {
		summary[i] = personSummaryResponse{
			Name:    s.Name,
			Company: s.Company,
			Hours:   s.Hours,
			Days:    s.Days,
		}
	}
	return reportResponse{
		Summary:    summary,
		Detail:     toTimeLogResponses(r.Detail),
		GrandTotal: r.GrandTotal,
		Count:      len(r.Detail),
	}
}
