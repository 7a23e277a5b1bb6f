package crawler

import "github.com/use-agent/maisonscan/models"

// TaskKind discriminates the two kinds of crawl work.
type TaskKind int

const (
	// TaskSearchPage fetches one search-results page and discovers
	// listing cards plus the next page.
	TaskSearchPage TaskKind = iota

	// TaskDetailPage fetches one listing's own page and merges it with
	// the summary that discovered it.
	TaskDetailPage
)

func (k TaskKind) String() string {
	switch k {
	case TaskSearchPage:
		return "search"
	case TaskDetailPage:
		return "detail"
	default:
		return "unknown"
	}
}

// Task is one unit of crawl work. A task is owned by exactly one worker
// at a time; Attempts counts fetches already tried, so a task popped
// with Attempts == n is on its (n+1)th try.
type Task struct {
	Kind TaskKind
	URL  string

	// Region and Page are set on search-page tasks.
	Region string
	Page   int

	// Summary is set on detail-page tasks.
	Summary models.ListingSummary

	Attempts int
}
