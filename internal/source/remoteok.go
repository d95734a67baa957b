package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobpulse/internal/domain"
)

// RemoteOKAdapter reads the public RemoteOK feed. No API key is required;
// the first element of the feed is a legal notice and is skipped.
type RemoteOKAdapter struct {
	apiBase string
	enabled bool
	client  *http.Client
}

func NewRemoteOKAdapter(enabled bool, timeout time.Duration) *RemoteOKAdapter {
	return &RemoteOKAdapter{
		apiBase: "https://remoteok.com",
		enabled: enabled,
		client:  newHTTPClient(timeout),
	}
}

func (a *RemoteOKAdapter) Name() domain.Source { return domain.SourceRemoteOK }

func (a *RemoteOKAdapter) Configured() bool {
	return a != nil && a.enabled
}

type remoteokJob struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	SalaryMin   int      `json:"salary_min"`
	SalaryMax   int      `json:"salary_max"`
	URL         string   `json:"url"`
}

func (a *RemoteOKAdapter) Fetch(ctx context.Context, req domain.SearchRequest) ([]domain.JobRecord, error) {
	if !a.Configured() {
		return nil, ErrNotConfigured
	}

	endpoint := a.apiBase + "/api"
	if q := strings.TrimSpace(req.Query); q != "" {
		params := url.Values{}
		params.Set("tags", q)
		endpoint += "?" + params.Encode()
	}

	var feed []remoteokJob
	if err := getJSON(ctx, a.client, endpoint, nil, &feed); err != nil {
		return nil, fmt.Errorf("remoteok: %w", err)
	}

	layouts := []string{time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02"}
	jobs := make([]domain.JobRecord, 0, len(feed))
	for _, j := range feed {
		// Legal-notice element and any malformed row carry no position.
		if strings.TrimSpace(j.Position) == "" {
			continue
		}

		salary := defaultSalary
		if j.SalaryMin > 0 && j.SalaryMax > 0 {
			salary = fmt.Sprintf("$%d - $%d", j.SalaryMin, j.SalaryMax)
		}

		jobs = append(jobs, domain.JobRecord{
			ID:              domain.QualifiedID(domain.SourceRemoteOK, pickNonEmpty(j.ID, j.Slug)),
			Title:           j.Position,
			Company:         orDefault(j.Company, "Confidential"),
			Location:        orDefault(j.Location, defaultLocation),
			Salary:          salary,
			SalaryMin:       j.SalaryMin,
			SalaryMax:       j.SalaryMax,
			SalaryCurrency:  "USD",
			EmploymentTypes: []string{"full-time", "remote"},
			Description:     j.Description,
			Requirements:    j.Tags,
			Benefits:        []string{},
			PostedAt:        parseTimeOr(j.Date, layouts, time.Now().UTC()),
			URL:             j.URL,
			Source:          domain.SourceRemoteOK,
		})
	}
	return jobs, nil
}
