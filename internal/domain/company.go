package domain

type CompanySize string

const (
	SizeStartup    CompanySize = "1-50"
	SizeSmall      CompanySize = "51-200"
	SizeMedium     CompanySize = "201-1000"
	SizeLarge      CompanySize = "1001-5000"
	SizeEnterprise CompanySize = "5000+"
)

type InterviewDifficulty string

const (
	DifficultyEasy   InterviewDifficulty = "easy"
	DifficultyMedium InterviewDifficulty = "medium"
	DifficultyHard   InterviewDifficulty = "hard"
)

// CultureScores holds the five named sub-ratings; each ranges 0.0-5.0
// independently of the headline Rating.
type CultureScores struct {
	WorkLifeBalance     float64 `json:"work_life_balance"`
	Compensation        float64 `json:"compensation"`
	CareerOpportunities float64 `json:"career_opportunities"`
	Management          float64 `json:"management"`
	Culture             float64 `json:"culture"`
}

type InterviewProcess struct {
	Difficulty InterviewDifficulty `json:"difficulty"`
	Duration   string              `json:"duration"`
	Stages     []string            `json:"stages"`
}

type CompanyRecord struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Industry    string            `json:"industry"`
	Size        CompanySize       `json:"size"`
	Location    string            `json:"location"`
	Website     string            `json:"website"`
	Rating      float64           `json:"rating"`
	ReviewCount int               `json:"review_count"`
	SalaryRange string            `json:"salary_range"`
	Benefits    []string          `json:"benefits"`
	Culture     CultureScores     `json:"culture"`
	Pros        []string          `json:"pros"`
	Cons        []string          `json:"cons"`
	Hiring      bool              `json:"hiring"`
	Interview   *InterviewProcess `json:"interview_process,omitempty"`
	RecentNews  []string          `json:"recent_news,omitempty"`
	RedFlags    []string          `json:"red_flags,omitempty"`
}
