package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"jobpulse/internal/domain"

	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
)

// CareersTarget describes one company careers page to crawl.
type CareersTarget struct {
	Company      string
	ListURL      string
	LinkSelector string
}

// ParseCareersTargets turns "Company Name=https://example.com/careers"
// pairs into targets, dropping malformed entries.
func ParseCareersTargets(entries []string) []CareersTarget {
	out := make([]CareersTarget, 0, len(entries))
	for _, e := range entries {
		name, listURL, ok := strings.Cut(e, "=")
		name = strings.TrimSpace(name)
		listURL = strings.TrimSpace(listURL)
		if !ok || name == "" || listURL == "" {
			continue
		}
		out = append(out, CareersTarget{Company: name, ListURL: listURL})
	}
	return out
}

// CareersAdapter crawls configured company careers pages. Static pages go
// through colly; when a page yields nothing (JS-rendered listings) it is
// retried once through a headless browser.
type CareersAdapter struct {
	targets  []CareersTarget
	timeout  time.Duration
	headless bool
}

func NewCareersAdapter(targets []CareersTarget, timeout time.Duration, headless bool) *CareersAdapter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CareersAdapter{targets: targets, timeout: timeout, headless: headless}
}

func (a *CareersAdapter) Name() domain.Source { return domain.SourceCompanyWebsite }

func (a *CareersAdapter) Configured() bool {
	return a != nil && len(a.targets) > 0
}

type careersListing struct {
	Title string
	URL   string
}

func (a *CareersAdapter) Fetch(ctx context.Context, req domain.SearchRequest) ([]domain.JobRecord, error) {
	if !a.Configured() {
		return nil, ErrNotConfigured
	}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	now := time.Now().UTC()

	var jobs []domain.JobRecord
	var lastErr error
	for _, t := range a.targets {
		listings, err := a.crawlTarget(ctx, t)
		if err != nil && a.headless {
			listings, err = a.crawlHeadless(ctx, t)
		}
		if err != nil {
			lastErr = err
			continue
		}

		for i, l := range listings {
			// Careers pages cannot be queried server-side; filter here.
			if query != "" && !strings.Contains(strings.ToLower(l.Title), query) {
				continue
			}
			jobs = append(jobs, domain.JobRecord{
				ID:              domain.QualifiedID(domain.SourceCompanyWebsite, fmt.Sprintf("%s-%d", slugify(t.Company), i)),
				Title:           l.Title,
				Company:         t.Company,
				Location:        orDefault(req.Location, defaultLocation),
				Salary:          defaultSalary,
				EmploymentTypes: []string{"full-time"},
				Description:     fmt.Sprintf("Opening listed on the %s careers page.", t.Company),
				Requirements:    []string{},
				Benefits:        []string{},
				PostedAt:        now,
				URL:             l.URL,
				Source:          domain.SourceCompanyWebsite,
			})
		}
	}

	if len(jobs) == 0 && lastErr != nil {
		return nil, fmt.Errorf("careers: %w", lastErr)
	}
	return jobs, nil
}

func (a *CareersAdapter) crawlTarget(ctx context.Context, t CareersTarget) ([]careersListing, error) {
	base, err := url.Parse(t.ListURL)
	if err != nil {
		return nil, fmt.Errorf("careers %s: %w", t.Company, err)
	}

	selector := t.LinkSelector
	if strings.TrimSpace(selector) == "" {
		selector = "a[href]"
	}

	c := colly.NewCollector(
		colly.AllowedDomains(base.Hostname()),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(a.timeout)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2, Delay: 300 * time.Millisecond})

	var listings []careersListing
	var crawlErr error

	c.OnHTML(selector, func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.Text)
		href := strings.TrimSpace(e.Attr("href"))
		if title == "" || href == "" || !looksLikeJobLink(href) {
			return
		}
		listings = append(listings, careersListing{
			Title: title,
			URL:   e.Request.AbsoluteURL(href),
		})
	})
	c.OnError(func(_ *colly.Response, err error) {
		crawlErr = err
	})

	if err := c.Visit(t.ListURL); err != nil {
		return nil, fmt.Errorf("careers %s: %w", t.Company, err)
	}
	c.Wait()

	if crawlErr != nil && len(listings) == 0 {
		return nil, fmt.Errorf("careers %s: %w", t.Company, crawlErr)
	}
	if len(listings) == 0 {
		return nil, fmt.Errorf("careers %s: no job links found", t.Company)
	}
	return listings, nil
}

// crawlHeadless renders the page in a headless browser and extracts job
// links via the DOM, for careers pages that build their listings in JS.
func (a *CareersAdapter) crawlHeadless(ctx context.Context, t CareersTarget) ([]careersListing, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, 25*time.Second)
	defer reqCancel()

	var pairs []string
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(t.ListURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.EvaluateAsDevTools(`Array.from(document.querySelectorAll('a[href]'))
			.filter(a => /job|career|position|opening/i.test(a.getAttribute('href')))
			.map(a => a.textContent.trim() + "\t" + a.href)`, &pairs),
	)
	if err != nil {
		return nil, fmt.Errorf("careers %s (headless): %w", t.Company, err)
	}

	listings := make([]careersListing, 0, len(pairs))
	for _, p := range pairs {
		title, href, ok := strings.Cut(p, "\t")
		title = strings.TrimSpace(title)
		href = strings.TrimSpace(href)
		if !ok || title == "" || href == "" {
			continue
		}
		listings = append(listings, careersListing{Title: title, URL: href})
	}
	if len(listings) == 0 {
		return nil, fmt.Errorf("careers %s (headless): no job links found", t.Company)
	}
	return listings, nil
}

func looksLikeJobLink(href string) bool {
	h := strings.ToLower(href)
	for _, marker := range []string{"job", "career", "position", "opening", "vacanc"} {
		if strings.Contains(h, marker) {
			return true
		}
	}
	return false
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "-")
}
