package domain

import "time"

// Job represents a filtered job posting ready for output
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Expiry      time.Time `json:"expiry"` // Day precision, listing closing date
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Source      JobSource `json:"source"`
	URL         string    `json:"url"`
	ApplyEmail  string    `json:"apply_email,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// RawJob represents raw extracted data before filtering
type RawJob struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	ExpiryText  string `json:"expiry_text"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"` // Detail page, used for email extraction
	Page        int    `json:"page"`          // Listing page the record came from
}

// PageResult holds everything one listing page produced. Err is non-nil
// when the fetch or parse failed; Jobs is empty in that case.
type PageResult struct {
	Page int
	Jobs []*RawJob
	Err  error
}

// KeyCount is one entry of a summary breakdown
type KeyCount struct {
	Key   string
	Count int
}

// Summary holds the statistics of one crawl run
type Summary struct {
	Source       JobSource
	PagesVisited int
	Found        int // Records extracted before filtering
	Kept         int
	Expired      int
	Unparsable   int // Dropped because the expiry text matched no known format

	// Breakdowns over the kept set, sorted by count descending
	// (key ascending on ties). Expiry keys use the display date format.
	ByLocation   []KeyCount
	ByExpiryDate []KeyCount
	ByCategory   []KeyCount
}

// DisplayDate is the human-readable date format used in output files
// and summary breakdowns.
const DisplayDate = "02 Jan 2006"

// JobSource represents a job listing source
type JobSource string

const (
	SourceVacancyMail  JobSource = "vacancymail"
	SourceJobsZimbabwe JobSource = "jobszimbabwe"
	SourceZimboJobs    JobSource = "zimbojobs"
)
