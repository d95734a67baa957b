package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jobpulse/internal/domain"
)

// IndeedAdapter uses the Indeed publisher search API.
type IndeedAdapter struct {
	publisherID string
	apiBase     string
	client      *http.Client
}

func NewIndeedAdapter(publisherID string, timeout time.Duration) *IndeedAdapter {
	return &IndeedAdapter{
		publisherID: publisherID,
		apiBase:     "https://api.indeed.com",
		client:      newHTTPClient(timeout),
	}
}

func (a *IndeedAdapter) Name() domain.Source { return domain.SourceIndeed }

func (a *IndeedAdapter) Configured() bool {
	return a != nil && a.publisherID != ""
}

type indeedResponse struct {
	Results      []indeedJob `json:"results"`
	TotalResults int         `json:"totalResults"`
}

type indeedJob struct {
	JobKey            string `json:"jobkey"`
	JobTitle          string `json:"jobtitle"`
	Company           string `json:"company"`
	FormattedLocation string `json:"formattedLocationFull"`
	Snippet           string `json:"snippet"`
	Date              string `json:"date"` // RFC1123
	URL               string `json:"url"`
	FormattedSalary   string `json:"formattedRelativeSalary"`
	JobType           string `json:"jobtype"`
}

func (a *IndeedAdapter) Fetch(ctx context.Context, req domain.SearchRequest) ([]domain.JobRecord, error) {
	if !a.Configured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("publisher", a.publisherID)
	params.Set("v", "2")
	params.Set("format", "json")
	params.Set("q", req.Query)
	params.Set("l", req.Location)
	if req.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Limit))
	}

	endpoint := a.apiBase + "/ads/apisearch?" + params.Encode()

	var out indeedResponse
	if err := getJSON(ctx, a.client, endpoint, nil, &out); err != nil {
		return nil, fmt.Errorf("indeed: %w", err)
	}

	layouts := []string{time.RFC1123, time.RFC1123Z, time.RFC3339}
	jobs := make([]domain.JobRecord, 0, len(out.Results))
	for _, j := range out.Results {
		jobs = append(jobs, domain.JobRecord{
			ID:              domain.QualifiedID(domain.SourceIndeed, j.JobKey),
			Title:           orDefault(j.JobTitle, "Software Engineer"),
			Company:         orDefault(j.Company, "Confidential"),
			Location:        orDefault(j.FormattedLocation, defaultLocation),
			Salary:          orDefault(j.FormattedSalary, defaultSalary),
			EmploymentTypes: splitEmploymentTypes(j.JobType),
			Description:     j.Snippet,
			Requirements:    []string{},
			Benefits:        []string{},
			PostedAt:        parseTimeOr(j.Date, layouts, time.Now().UTC()),
			URL:             j.URL,
			Source:          domain.SourceIndeed,
		})
	}
	return jobs, nil
}
