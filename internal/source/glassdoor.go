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

// GlassdoorAdapter uses the Glassdoor partner API. The partner id rides in
// the same credential string as the key, separated by a colon.
type GlassdoorAdapter struct {
	partnerID string
	apiKey    string
	apiBase   string
	client    *http.Client
}

func NewGlassdoorAdapter(credential string, timeout time.Duration) *GlassdoorAdapter {
	partnerID, apiKey := splitCredential(credential)
	return &GlassdoorAdapter{
		partnerID: partnerID,
		apiKey:    apiKey,
		apiBase:   "https://api.glassdoor.com",
		client:    newHTTPClient(timeout),
	}
}

func splitCredential(credential string) (string, string) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", ""
	}
	if i := strings.IndexByte(credential, ':'); i > 0 {
		return credential[:i], credential[i+1:]
	}
	return "", credential
}

func (a *GlassdoorAdapter) Name() domain.Source { return domain.SourceGlassdoor }

func (a *GlassdoorAdapter) Configured() bool {
	return a != nil && a.apiKey != ""
}

type glassdoorResponse struct {
	Success  bool `json:"success"`
	Response struct {
		Jobs []glassdoorJob `json:"jobListings"`
	} `json:"response"`
}

type glassdoorJob struct {
	JobListingID int64  `json:"jobListingId"`
	JobTitle     string `json:"jobTitle"`
	Employer     string `json:"employerName"`
	Location     string `json:"location"`
	Descr        string `json:"descriptionFragment"`
	PayRange     string `json:"payCurrencyAndRange"`
	AgeInDays    int    `json:"ageInDays"`
	JobViewURL   string `json:"jobViewUrl"`
}

func (a *GlassdoorAdapter) Fetch(ctx context.Context, req domain.SearchRequest) ([]domain.JobRecord, error) {
	if !a.Configured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("v", "1")
	params.Set("format", "json")
	params.Set("action", "jobs-prog")
	params.Set("t.p", a.partnerID)
	params.Set("t.k", a.apiKey)
	params.Set("q", req.Query)
	params.Set("l", req.Location)

	endpoint := a.apiBase + "/api/api.htm?" + params.Encode()

	var out glassdoorResponse
	if err := getJSON(ctx, a.client, endpoint, nil, &out); err != nil {
		return nil, fmt.Errorf("glassdoor: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("glassdoor: unsuccessful response")
	}

	now := time.Now().UTC()
	jobs := make([]domain.JobRecord, 0, len(out.Response.Jobs))
	for _, j := range out.Response.Jobs {
		age := j.AgeInDays
		if age < 0 {
			age = 0
		}
		jobs = append(jobs, domain.JobRecord{
			ID:              domain.QualifiedID(domain.SourceGlassdoor, fmt.Sprintf("%d", j.JobListingID)),
			Title:           orDefault(j.JobTitle, "Software Engineer"),
			Company:         orDefault(j.Employer, "Confidential"),
			Location:        orDefault(j.Location, defaultLocation),
			Salary:          orDefault(j.PayRange, defaultSalary),
			EmploymentTypes: []string{"full-time"},
			Description:     j.Descr,
			Requirements:    []string{},
			Benefits:        []string{},
			PostedAt:        now.AddDate(0, 0, -age),
			URL:             j.JobViewURL,
			Source:          domain.SourceGlassdoor,
		})
	}
	return jobs, nil
}
