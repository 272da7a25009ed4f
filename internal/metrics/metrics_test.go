package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/raoulx24/feed-archiver/internal/report"
)

func TestCollector_Observe(t *testing.T) {
	archive := report.Report{Results: []report.Result{
		{Stage: report.StageArchive, Name: "customer.csv", Status: report.StatusArchived},
		{Stage: report.StageArchive, Name: "supplier.csv", Status: report.StatusArchived},
		{Stage: report.StageArchive, Name: "order.csv", Status: report.StatusFailed, Err: errors.New("locked")},
		{Stage: report.StageArchive, Name: "extra.csv", Status: report.StatusSkipped},
	}}
	purge := report.Report{Results: []report.Result{
		{Stage: report.StagePurge, Name: "old_order.zip", Status: report.StatusPurged},
		{Stage: report.StagePurge, Name: "locked.zip", Status: report.StatusFailed},
	}}

	c := NewCollector()
	c.Observe(archive, purge)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"archived", testutil.ToFloat64(c.archived), 2},
		{"skipped", testutil.ToFloat64(c.skipped), 1},
		{"failed", testutil.ToFloat64(c.failed), 1},
		{"purged", testutil.ToFloat64(c.purged), 1},
		{"purge failures", testutil.ToFloat64(c.purgeFailures), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestCollector_Finish(t *testing.T) {
	started := time.Unix(1700000000, 0)
	finished := started.Add(1500 * time.Millisecond)

	c := NewCollector()
	c.Finish(true, started, finished)

	if got := testutil.ToFloat64(c.lastRunSuccess); got != 1 {
		t.Errorf("last_run_success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.lastRunTime); got != float64(finished.Unix()) {
		t.Errorf("last_run_timestamp_seconds = %v", got)
	}
	if got := testutil.ToFloat64(c.duration); got != 1.5 {
		t.Errorf("run_duration_seconds = %v, want 1.5", got)
	}

	c.Finish(false, started, finished)
	if got := testutil.ToFloat64(c.lastRunSuccess); got != 0 {
		t.Errorf("last_run_success = %v, want 0", got)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector()
	c.Observe(report.Report{Results: []report.Result{
		{Stage: report.StageArchive, Status: report.StatusArchived},
	}})
	c.Finish(true, time.Now(), time.Now())

	path := filepath.Join(t.TempDir(), "feed_archiver.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"feed_archiver_files_archived_total 1",
		"feed_archiver_last_run_success 1",
		"# TYPE feed_archiver_run_duration_seconds gauge",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}
