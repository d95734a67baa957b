// Package fallback produces syntactically valid placeholder records whenever
// an upstream source is unavailable or unconfigured. It performs no I/O and
// cannot fail; every required field of the common record shapes is populated.
package fallback

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"jobpulse/internal/domain"
)

var companyPool = []string{
	"TechCorp", "InnovateLabs", "DataDyne", "CloudNine Systems", "Quantum Soft",
	"NexGen Solutions", "BrightPath", "CodeCraft", "Vertex Digital", "BlueOrbit",
}

var titlePool = []string{
	"Software Engineer", "Backend Developer", "Frontend Developer",
	"Full Stack Developer", "Data Analyst", "Product Manager",
	"DevOps Engineer", "QA Engineer",
}

var locationPool = []string{
	"Remote", "New York, NY", "San Francisco, CA", "Austin, TX",
	"Seattle, WA", "London, UK", "Berlin, Germany",
}

var titlePrefixes = []string{"", "Senior ", "Junior ", "Lead ", "Staff "}

var employmentTypePool = [][]string{
	{"full-time"},
	{"full-time", "remote"},
	{"contract"},
	{"contract", "remote"},
	{"part-time"},
}

var requirementPool = []string{
	"3+ years of relevant experience",
	"Strong communication skills",
	"Experience with cloud platforms",
	"Bachelor's degree or equivalent experience",
	"Proficiency with modern development workflows",
	"Experience working in agile teams",
}

var benefitPool = []string{
	"Health insurance", "Remote work", "401(k) matching", "Flexible hours",
	"Stock options", "Learning budget", "Paid parental leave",
}

var industryPool = []string{
	"Technology", "Finance", "Healthcare", "E-commerce", "Media",
}

var skillPool = []string{
	"Go", "Python", "TypeScript", "React", "Kubernetes", "SQL", "AWS",
	"System Design", "Data Analysis",
}

var prosPool = []string{
	"Great work-life balance", "Strong engineering culture",
	"Competitive compensation", "Supportive management", "Clear career ladder",
}

var consPool = []string{
	"Fast-paced environment", "Limited remote options on some teams",
	"Processes still maturing", "On-call rotation",
}

var newsPool = []string{
	"Announced a new product line", "Closed a Series B funding round",
	"Opened a new engineering office", "Named a top workplace this year",
}

var interviewStagePool = []string{
	"Recruiter screen", "Technical phone interview", "Take-home assignment",
	"On-site loop", "Team fit conversation", "Offer call",
}

// Generator is seeded explicitly per call site so tests can pin the output.
// One Generator never repeats a title/company pair across its Jobs calls
// until the pool combinations are exhausted, so records synthesized for
// several sources within one aggregation survive identity-key dedup.
type Generator struct {
	rng  *rand.Rand
	now  time.Time
	seen map[string]struct{}
}

func New(seed int64) *Generator {
	return &Generator{
		rng:  rand.New(rand.NewSource(seed)),
		now:  time.Now().UTC(),
		seen: make(map[string]struct{}),
	}
}

// Jobs returns count records tagged with the given source. Title and location
// incorporate the request so the output is recognizably related to it.
func (g *Generator) Jobs(source domain.Source, req domain.SearchRequest, count int) []domain.JobRecord {
	if count <= 0 {
		return []domain.JobRecord{}
	}

	out := make([]domain.JobRecord, 0, count)
	for i := 0; i < count; i++ {
		title, company := g.titleCompany(req.Query)
		location := strings.TrimSpace(req.Location)
		if location == "" {
			location = g.pick(locationPool)
		}

		low := 60 + g.rng.Intn(60)
		high := low + 20 + g.rng.Intn(40)
		posted := g.now.Add(-time.Duration(g.rng.Intn(30*24)) * time.Hour)

		out = append(out, domain.JobRecord{
			ID:              domain.QualifiedID(source, fmt.Sprintf("fb-%d-%08x", i, g.rng.Uint32())),
			Title:           title,
			Company:         company,
			Location:        location,
			Salary:          fmt.Sprintf("$%dk - $%dk", low, high),
			SalaryMin:       low * 1000,
			SalaryMax:       high * 1000,
			SalaryCurrency:  "USD",
			EmploymentTypes: employmentTypePool[g.rng.Intn(len(employmentTypePool))],
			Description:     fmt.Sprintf("%s is hiring a %s in %s. You will join a growing team shipping features end to end.", company, title, location),
			Requirements:    g.sample(requirementPool, 3),
			Benefits:        g.sample(benefitPool, 3),
			PostedAt:        posted,
			Source:          source,
		})
	}
	return out
}

// Company returns a synthetic profile for the requested name. Rating falls in
// [3.5, 5.0]; every culture score falls in [0, 5].
func (g *Generator) Company(name string) domain.CompanyRecord {
	name = strings.TrimSpace(name)
	if name == "" {
		name = g.pick(companyPool)
	}

	sizes := []domain.CompanySize{
		domain.SizeStartup, domain.SizeSmall, domain.SizeMedium,
		domain.SizeLarge, domain.SizeEnterprise,
	}
	difficulties := []domain.InterviewDifficulty{
		domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard,
	}

	var red []string
	if g.rng.Intn(4) == 0 {
		red = []string{"High reported turnover in reviews"}
	}

	return domain.CompanyRecord{
		ID:          domain.QualifiedID(domain.SourceFallback, slug(name)),
		Name:        name,
		Industry:    g.pick(industryPool),
		Size:        sizes[g.rng.Intn(len(sizes))],
		Location:    g.pick(locationPool),
		Website:     "https://www." + slug(name) + ".com",
		Rating:      round1(3.5 + g.rng.Float64()*1.5),
		ReviewCount: 50 + g.rng.Intn(4950),
		SalaryRange: fmt.Sprintf("$%dk - $%dk", 70+g.rng.Intn(40), 140+g.rng.Intn(60)),
		Benefits:    g.sample(benefitPool, 4),
		Culture: domain.CultureScores{
			WorkLifeBalance:     g.cultureScore(),
			Compensation:        g.cultureScore(),
			CareerOpportunities: g.cultureScore(),
			Management:          g.cultureScore(),
			Culture:             g.cultureScore(),
		},
		Pros:   g.sample(prosPool, 3),
		Cons:   g.sample(consPool, 2),
		Hiring: g.rng.Intn(4) != 0,
		Interview: &domain.InterviewProcess{
			Difficulty: difficulties[g.rng.Intn(len(difficulties))],
			Duration:   fmt.Sprintf("%d-%d weeks", 2+g.rng.Intn(2), 4+g.rng.Intn(3)),
			Stages:     g.sample(interviewStagePool, 4),
		},
		RecentNews: g.sample(newsPool, 2),
		RedFlags:   red,
	}
}

// Analytics returns a synthetic snapshot for the user. All counters are
// non-negative and the response rate stays within [0, 1].
func (g *Generator) Analytics(userID string) domain.AnalyticsSnapshot {
	trends := make([]domain.IndustryTrend, 0, 4)
	for _, s := range g.sample(skillPool, 4) {
		trends = append(trends, domain.IndustryTrend{
			Skill:  s,
			Demand: round1(40 + g.rng.Float64()*55),
		})
	}

	directions := []domain.TrendDirection{
		domain.TrendIncreasing, domain.TrendStable, domain.TrendDecreasing,
	}

	return domain.AnalyticsSnapshot{
		UserID:              strings.TrimSpace(userID),
		ProfileViews:        20 + g.rng.Intn(480),
		ApplicationsSent:    g.rng.Intn(60),
		InterviewsScheduled: g.rng.Intn(12),
		ResponseRate:        round2(0.1 + g.rng.Float64()*0.5),
		AvgResponseDays:     round1(2 + g.rng.Float64()*8),
		TopSkills:           g.sample(skillPool, 5),
		IndustryTrends:      trends,
		Salary: domain.SalaryInsight{
			Average:    (90 + g.rng.Intn(60)) * 1000,
			Percentile: 40 + g.rng.Intn(55),
			Trend:      directions[g.rng.Intn(len(directions))],
		},
	}
}

func (g *Generator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

// titleCompany draws a pair not yet produced by this Generator, rerolling a
// bounded number of times before accepting a repeat.
func (g *Generator) titleCompany(query string) (string, string) {
	q := strings.TrimSpace(query)
	var title, company string
	for attempt := 0; attempt < 25; attempt++ {
		if q != "" {
			title = titlePrefixes[g.rng.Intn(len(titlePrefixes))] + titleCase(q)
		} else {
			title = titlePrefixes[g.rng.Intn(len(titlePrefixes))] + g.pick(titlePool)
		}
		company = g.pick(companyPool)
		key := strings.ToLower(title) + "_" + strings.ToLower(company)
		if _, ok := g.seen[key]; !ok {
			g.seen[key] = struct{}{}
			return title, company
		}
	}
	// Pool combinations exhausted; disambiguate with a level suffix.
	title = fmt.Sprintf("%s %d", title, len(g.seen)+1)
	g.seen[strings.ToLower(title)+"_"+strings.ToLower(company)] = struct{}{}
	return title, company
}

// sample returns n distinct entries, preserving pool order.
func (g *Generator) sample(pool []string, n int) []string {
	if n >= len(pool) {
		out := make([]string, len(pool))
		copy(out, pool)
		return out
	}
	idx := g.rng.Perm(len(pool))[:n]
	picked := make(map[int]struct{}, n)
	for _, i := range idx {
		picked[i] = struct{}{}
	}
	out := make([]string, 0, n)
	for i := range pool {
		if _, ok := picked[i]; ok {
			out = append(out, pool[i])
		}
	}
	return out
}

func (g *Generator) cultureScore() float64 {
	return round1(2.5 + g.rng.Float64()*2.5)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "-")
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
