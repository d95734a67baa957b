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

// JSearchAdapter queries the JSearch aggregator on RapidAPI, which itself
// merges several boards. Its records keep the glassdoor tag when JSearch
// reports Glassdoor as the publisher, otherwise they carry the publisher
// board's closest tag.
type JSearchAdapter struct {
	apiKey  string
	apiBase string
	tag     domain.Source
	client  *http.Client
}

func NewJSearchAdapter(apiKey string, tag domain.Source, timeout time.Duration) *JSearchAdapter {
	if tag == "" {
		tag = domain.SourceGlassdoor
	}
	return &JSearchAdapter{
		apiKey:  apiKey,
		apiBase: "https://jsearch.p.rapidapi.com",
		tag:     tag,
		client:  newHTTPClient(timeout),
	}
}

func (a *JSearchAdapter) Name() domain.Source { return a.tag }

func (a *JSearchAdapter) Configured() bool {
	return a != nil && a.apiKey != ""
}

type jsearchResponse struct {
	Status string       `json:"status"`
	Data   []jsearchJob `json:"data"`
}

type jsearchJob struct {
	JobID             string   `json:"job_id"`
	JobPublisher      string   `json:"job_publisher"`
	EmployerName      string   `json:"employer_name"`
	JobTitle          string   `json:"job_title"`
	JobCity           string   `json:"job_city"`
	JobCountry        string   `json:"job_country"`
	JobDescription    string   `json:"job_description"`
	JobEmploymentType string   `json:"job_employment_type"`
	JobIsRemote       bool     `json:"job_is_remote"`
	JobPostedAt       int64    `json:"job_posted_at_timestamp"`
	JobMinSalary      float64  `json:"job_min_salary"`
	JobMaxSalary      float64  `json:"job_max_salary"`
	JobSalaryCurrency string   `json:"job_salary_currency"`
	JobHighlights     struct {
		Qualifications []string `json:"Qualifications"`
		Benefits       []string `json:"Benefits"`
	} `json:"job_highlights"`
	JobApplyLink string `json:"job_apply_link"`
}

func (a *JSearchAdapter) Fetch(ctx context.Context, req domain.SearchRequest) ([]domain.JobRecord, error) {
	if !a.Configured() {
		return nil, ErrNotConfigured
	}

	q := strings.TrimSpace(req.Query)
	if loc := strings.TrimSpace(req.Location); loc != "" {
		q = strings.TrimSpace(q + " in " + loc)
	}
	if q == "" {
		q = "jobs"
	}

	params := url.Values{}
	params.Set("query", q)
	params.Set("page", "1")
	params.Set("num_pages", "1")

	endpoint := a.apiBase + "/search?" + params.Encode()
	headers := map[string]string{
		"X-RapidAPI-Key":  a.apiKey,
		"X-RapidAPI-Host": "jsearch.p.rapidapi.com",
	}

	var out jsearchResponse
	if err := getJSON(ctx, a.client, endpoint, headers, &out); err != nil {
		return nil, fmt.Errorf("jsearch: %w", err)
	}
	if !strings.EqualFold(out.Status, "OK") {
		return nil, fmt.Errorf("jsearch: status %q", out.Status)
	}

	jobs := make([]domain.JobRecord, 0, len(out.Data))
	for _, j := range out.Data {
		tag := publisherTag(j.JobPublisher, a.tag)
		location := strings.TrimSpace(strings.TrimPrefix(j.JobCity+", "+j.JobCountry, ", "))
		location = strings.TrimSuffix(location, ", ")
		if j.JobIsRemote {
			location = pickNonEmpty(location, "Remote")
		}

		salary := defaultSalary
		if j.JobMinSalary > 0 && j.JobMaxSalary > 0 {
			salary = fmt.Sprintf("%.0f - %.0f %s", j.JobMinSalary, j.JobMaxSalary, orDefault(j.JobSalaryCurrency, "USD"))
		}

		posted := time.Now().UTC()
		if j.JobPostedAt > 0 {
			posted = time.Unix(j.JobPostedAt, 0).UTC()
		}

		jobs = append(jobs, domain.JobRecord{
			ID:              domain.QualifiedID(tag, j.JobID),
			Title:           orDefault(j.JobTitle, "Software Engineer"),
			Company:         orDefault(j.EmployerName, "Confidential"),
			Location:        orDefault(location, defaultLocation),
			Salary:          salary,
			SalaryMin:       int(j.JobMinSalary),
			SalaryMax:       int(j.JobMaxSalary),
			SalaryCurrency:  orDefault(j.JobSalaryCurrency, ""),
			EmploymentTypes: splitEmploymentTypes(j.JobEmploymentType),
			Description:     j.JobDescription,
			Requirements:    j.JobHighlights.Qualifications,
			Benefits:        j.JobHighlights.Benefits,
			PostedAt:        posted,
			URL:             j.JobApplyLink,
			Source:          tag,
		})
	}
	return jobs, nil
}

// publisherTag maps JSearch's reported publisher board onto the source enum;
// unrecognized publishers keep the adapter's own tag.
func publisherTag(publisher string, def domain.Source) domain.Source {
	switch strings.ToLower(strings.TrimSpace(publisher)) {
	case "linkedin":
		return domain.SourceLinkedIn
	case "indeed":
		return domain.SourceIndeed
	case "glassdoor":
		return domain.SourceGlassdoor
	case "remoteok", "remote ok":
		return domain.SourceRemoteOK
	default:
		return def
	}
}
