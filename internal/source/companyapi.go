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

// CompanyAPIAdapter looks up company intelligence profiles from an external
// company-data API. Unlike the job adapters it resolves a single record per
// request, so there is no fan-out or merge step behind it.
type CompanyAPIAdapter struct {
	apiBase string
	client  *http.Client
}

func NewCompanyAPIAdapter(apiBase string, timeout time.Duration) *CompanyAPIAdapter {
	return &CompanyAPIAdapter{
		apiBase: strings.TrimRight(strings.TrimSpace(apiBase), "/"),
		client:  newHTTPClient(timeout),
	}
}

func (a *CompanyAPIAdapter) Configured() bool {
	return a != nil && a.apiBase != ""
}

func (a *CompanyAPIAdapter) Lookup(ctx context.Context, name string) (domain.CompanyRecord, error) {
	if !a.Configured() {
		return domain.CompanyRecord{}, ErrNotConfigured
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.CompanyRecord{}, fmt.Errorf("company lookup: empty name")
	}

	endpoint := a.apiBase + "/companies/" + url.PathEscape(name)

	var out domain.CompanyRecord
	if err := getJSON(ctx, a.client, endpoint, nil, &out); err != nil {
		return domain.CompanyRecord{}, fmt.Errorf("company lookup: %w", err)
	}
	if strings.TrimSpace(out.Name) == "" {
		out.Name = name
	}
	return out, nil
}
