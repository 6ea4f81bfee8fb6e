package api

import (
	"net/http"
	"time"

	"salonbook/internal/schedule"
)

// ServiceResponse is one catalog entry. DurationMinutes is the parsed
// value customers reason about; the raw form stays internal.
type ServiceResponse struct {
	ID              string  `json:"id"`
	CatalogueID     string  `json:"catalogue_id,omitempty"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}

// StaffResponse is one staff member with their weekly rules.
type StaffResponse struct {
	ID    string              `json:"id"`
	Name  string              `json:"name"`
	Rules []WorkingHoursEntry `json:"working_hours"`
}

type WorkingHoursEntry struct {
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Days      []string `json:"days"`
}

// handleListServices returns the service catalog.
// GET /api/services
func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.catalog.ListServices(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}

	out := make([]ServiceResponse, 0, len(services))
	for _, svc := range services {
		minutes, err := schedule.ParseServiceDuration(svc.DurationRaw)
		if err != nil {
			s.logger.Warn().Str("service_id", svc.ID).Str("duration", svc.DurationRaw).Msg("unparseable catalog duration")
			continue
		}
		out = append(out, ServiceResponse{
			ID:              svc.ID,
			CatalogueID:     svc.CatalogueID,
			Name:            svc.Name,
			DurationMinutes: minutes,
			Price:           svc.Price,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": out})
}

// handleListStaff returns staff with their weekly working-hour rules.
// GET /api/staff
func (s *Server) handleListStaff(w http.ResponseWriter, r *http.Request) {
	staffSet, err := s.catalog.ListStaff(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}

	out := make([]StaffResponse, 0, len(staffSet))
	for _, member := range staffSet {
		rules := make([]WorkingHoursEntry, 0, len(member.Rules))
		for _, rule := range member.Rules {
			days := make([]string, 0, len(rule.Days))
			for _, d := range rule.Days {
				days = append(days, d.String())
			}
			rules = append(rules, WorkingHoursEntry{
				StartTime: rule.StartTime,
				EndTime:   rule.EndTime,
				Days:      days,
			})
		}
		out = append(out, StaffResponse{ID: member.ID, Name: member.Name, Rules: rules})
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": out})
}

// handleExportSchedule streams the day schedule workbook.
// GET /api/export/schedule?date=YYYY-MM-DD&tz=
func (s *Server) handleExportSchedule(w http.ResponseWriter, r *http.Request) {
	stk, err := s.stackFor(r.URL.Query().Get("tz"))
	if err != nil {
		s.fail(w, err)
		return
	}

	date, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("date"), stk.basis.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		`attachment; filename="schedule-`+date.Format("2006-01-02")+`.xlsx"`)

	if err := s.exporter.WriteDay(r.Context(), date, w); err != nil {
		s.logger.Error().Err(err).Msg("schedule export failed")
	}
}
