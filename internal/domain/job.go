package domain

import (
	"strings"
	"time"
)

// Source identifies which upstream produced a record. Fallback records carry
// the tag of the adapter they substitute for, not SourceFallback, so the
// response contract never distinguishes real from synthetic data.
type Source string

const (
	SourceLinkedIn       Source = "linkedin"
	SourceIndeed         Source = "indeed"
	SourceGlassdoor      Source = "glassdoor"
	SourceRemoteOK       Source = "remoteok"
	SourceCompanyWebsite Source = "company-website"
	SourceFallback       Source = "fallback"
)

type JobRecord struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Salary          string    `json:"salary"`
	SalaryMin       int       `json:"salary_min,omitempty"`
	SalaryMax       int       `json:"salary_max,omitempty"`
	SalaryCurrency  string    `json:"salary_currency,omitempty"`
	EmploymentTypes []string  `json:"employment_types"`
	Description     string    `json:"description"`
	Requirements    []string  `json:"requirements"`
	Benefits        []string  `json:"benefits"`
	PostedAt        time.Time `json:"posted_at"`
	URL             string    `json:"url,omitempty"`
	Source          Source    `json:"source"`
}

// IdentityKey collapses postings that share a title and company. Two distinct
// real postings with the same pair merge into one; accepted approximation.
func (j JobRecord) IdentityKey() string {
	return strings.ToLower(strings.TrimSpace(j.Title)) + "_" + strings.ToLower(strings.TrimSpace(j.Company))
}

// QualifiedID builds a source-qualified record id, e.g. "remoteok-12345".
func QualifiedID(source Source, providerID string) string {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return string(source)
	}
	return string(source) + "-" + providerID
}
