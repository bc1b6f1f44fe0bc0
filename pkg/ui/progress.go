package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	progressBar   = "█"
	progressEmpty = "░"
)

// StatusTracker keeps track of batch mutation progress
type StatusTracker struct {
	Total     int
	Processed int
	Failed    int
	StartTime time.Time
}

// NewStatusTracker creates a tracker for a batch of the given size
func NewStatusTracker(total int) *StatusTracker {
	return &StatusTracker{
		Total:     total,
		StartTime: time.Now(),
	}
}

// RecordSuccess counts one successfully mutated post
func (st *StatusTracker) RecordSuccess() {
	st.Processed++
}

// RecordFailure counts one post whose mutation failed
func (st *StatusTracker) RecordFailure() {
	st.Processed++
	st.Failed++
}

// ProgressBar returns a formatted progress bar for the batch
func (st *StatusTracker) ProgressBar() string {
	const width = 20
	var progress float64
	if st.Total > 0 {
		progress = float64(st.Processed) / float64(st.Total)
	}
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat(progressBar, filled) +
		strings.Repeat(progressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.Processed, st.Total)
}

// ElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) ElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// Rate returns the average processing rate in items per minute
func (st *StatusTracker) Rate() float64 {
	elapsed := st.ElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Processed) / elapsed
}

// PrintProgress rewrites the current progress line in place
func (st *StatusTracker) PrintProgress(postID string) {
	if quiet {
		return
	}
	fmt.Printf("\r%s %s %s", Green("[UPDATED]"), st.ProgressBar(), Dim(postID))
}

// PrintSummary prints the final batch summary
func (st *StatusTracker) PrintSummary() {
	if quiet {
		return
	}
	fmt.Println()
	fmt.Printf("%s %d processed, %d failed in %s\n",
		Cyan("[DONE]"),
		st.Processed,
		st.Failed,
		st.ElapsedTime().Round(time.Second))
}
