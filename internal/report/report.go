// Package report collects per-item outcomes of the archive and purge stages.
package report

type Status string

const (
	StatusArchived Status = "archived"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
	StatusPurged   Status = "purged"
)

type Stage string

const (
	StageArchive Stage = "archive"
	StagePurge   Stage = "purge"
)

// Result is the outcome for one file.
type Result struct {
	Stage    Stage
	Name     string
	Status   Status
	Artifact string // archive path, when one was written or removed
	Err      error
}

// Detail returns the failure reason, or "" on success.
func (r Result) Detail() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Report is an ordered list of results for one stage.
type Report struct {
	Results []Result
}

func (r *Report) Add(res Result) {
	r.Results = append(r.Results, res)
}

// Count returns the number of results with the given status.
func (r Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Failed returns the failed results in order.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}
