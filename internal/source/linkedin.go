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

// LinkedInAdapter talks to the LinkedIn job search REST API.
type LinkedInAdapter struct {
	apiKey  string
	apiBase string
	client  *http.Client
}

func NewLinkedInAdapter(apiKey string, timeout time.Duration) *LinkedInAdapter {
	return &LinkedInAdapter{
		apiKey:  apiKey,
		apiBase: "https://api.linkedin.com",
		client:  newHTTPClient(timeout),
	}
}

func (a *LinkedInAdapter) Name() domain.Source { return domain.SourceLinkedIn }

func (a *LinkedInAdapter) Configured() bool {
	return a != nil && a.apiKey != ""
}

type linkedinResponse struct {
	Elements []linkedinJob `json:"elements"`
}

type linkedinJob struct {
	ID                 int64  `json:"id"`
	Title              string `json:"title"`
	CompanyName        string `json:"companyName"`
	FormattedLocation  string `json:"formattedLocation"`
	Description        string `json:"description"`
	EmploymentStatus   string `json:"employmentStatus"`
	ListedAt           int64  `json:"listedAt"` // epoch millis
	SalaryInsightsText string `json:"salaryInsightsText"`
	ApplyURL           string `json:"applyUrl"`
}

func (a *LinkedInAdapter) Fetch(ctx context.Context, req domain.SearchRequest) ([]domain.JobRecord, error) {
	if !a.Configured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("keywords", req.Query)
	params.Set("location", req.Location)
	if req.Limit > 0 {
		params.Set("count", strconv.Itoa(req.Limit))
	}

	endpoint := a.apiBase + "/v2/jobSearch?" + params.Encode()
	headers := map[string]string{
		"Authorization":             "Bearer " + a.apiKey,
		"X-Restli-Protocol-Version": "2.0.0",
	}

	var out linkedinResponse
	if err := getJSON(ctx, a.client, endpoint, headers, &out); err != nil {
		return nil, fmt.Errorf("linkedin: %w", err)
	}

	jobs := make([]domain.JobRecord, 0, len(out.Elements))
	for _, j := range out.Elements {
		posted := time.Now().UTC()
		if j.ListedAt > 0 {
			posted = time.UnixMilli(j.ListedAt).UTC()
		}
		jobs = append(jobs, domain.JobRecord{
			ID:              domain.QualifiedID(domain.SourceLinkedIn, strconv.FormatInt(j.ID, 10)),
			Title:           orDefault(j.Title, "Software Engineer"),
			Company:         orDefault(j.CompanyName, "Confidential"),
			Location:        orDefault(j.FormattedLocation, defaultLocation),
			Salary:          orDefault(j.SalaryInsightsText, defaultSalary),
			EmploymentTypes: splitEmploymentTypes(j.EmploymentStatus),
			Description:     j.Description,
			Requirements:    []string{},
			Benefits:        []string{},
			PostedAt:        posted,
			URL:             j.ApplyURL,
			Source:          domain.SourceLinkedIn,
		})
	}
	return jobs, nil
}
