package batch

import (
	"context"
	"fmt"
	"time"

	"wbprivacy/pkg/checkpoint"
	"wbprivacy/pkg/logger"
	"wbprivacy/pkg/ratelimit"
	"wbprivacy/pkg/ui"
	"wbprivacy/pkg/weibo"
)

// Options controls one batch run
type Options struct {
	// MaxPages caps the listing; 0 means every page
	MaxPages int
	// Skip drops the first N listed posts before mutating
	Skip int
	// Limit mutates at most N posts after skipping; 0 means no limit
	Limit int
	// DryRun lists and selects but issues no mutations
	DryRun bool
	// Resume continues from an existing checkpoint instead of starting over
	Resume bool
	// ForceRestart discards any existing checkpoint
	ForceRestart bool
}

// Failure records one post whose mutation failed
type Failure struct {
	PostID  string
	Message string
}

// Summary is the outcome of a batch run
type Summary struct {
	Listed   int
	Selected int
	Updated  int
	Skipped  int
	Failed   int
	Failures []Failure
	DryRun   bool
	Duration time.Duration
}

// Runner walks a user's posts and applies one visibility level to each.
// Mutations are strictly sequential: listing completes before the first
// mutation, items are paced at a fixed delay, and a per-item failure is
// tallied without stopping the batch.
type Runner struct {
	client        WeiboClient
	pacer         ratelimit.Pacer
	checkpointMgr *checkpoint.Manager
	logger        logger.Logger
}

// NewRunner creates a batch runner with the given inter-item delay
func NewRunner(client WeiboClient, itemDelay time.Duration, log logger.Logger) *Runner {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Runner{
		client: client,
		pacer:  ratelimit.NewIntervalPacer(itemDelay),
		logger: log,
	}
}

// SetCheckpointManager enables checkpoint persistence for resumable runs
func (r *Runner) SetCheckpointManager(m *checkpoint.Manager) {
	r.checkpointMgr = m
}

// Run lists the user's posts and sets each one to the given visibility.
// Listing errors are fatal and return no summary; mutation errors are
// recorded per post and the batch continues.
func (r *Runner) Run(ctx context.Context, userID string, visibility weibo.Visibility, opts Options) (*Summary, error) {
	if !visibility.IsValid() {
		return nil, fmt.Errorf("invalid visibility level: %d", int(visibility))
	}

	start := time.Now()

	posts, err := r.client.FetchAllPosts(ctx, userID, opts.MaxPages)
	if err != nil {
		return nil, fmt.Errorf("listing failed: %w", err)
	}

	selected := selectPosts(posts, opts.Skip, opts.Limit)

	summary := &Summary{
		Listed:   len(posts),
		Selected: len(selected),
		DryRun:   opts.DryRun,
	}

	r.logger.InfoWithFields("batch starting", map[string]interface{}{
		"user_id":    userID,
		"visibility": visibility.String(),
		"listed":     summary.Listed,
		"selected":   summary.Selected,
		"dry_run":    opts.DryRun,
	})

	if opts.DryRun {
		for _, post := range selected {
			r.logger.InfoWithFields("would update post", map[string]interface{}{
				"post_id":    string(post.ID),
				"visibility": visibility.String(),
			})
		}
		summary.Duration = time.Since(start)
		return summary, nil
	}

	cp, err := r.prepareCheckpoint(userID, visibility, opts)
	if err != nil {
		return nil, err
	}
	if cp != nil {
		cp.TotalListed = summary.Listed
	}

	tracker := ui.NewStatusTracker(len(selected))
	r.pacer.Reset()

	for _, post := range selected {
		postID := string(post.ID)

		if cp != nil && cp.IsProcessed(postID) {
			summary.Skipped++
			continue
		}

		if err := r.pacer.Wait(ctx); err != nil {
			summary.Duration = time.Since(start)
			return summary, fmt.Errorf("batch interrupted: %w", err)
		}

		err := r.client.SetVisibility(ctx, postID, visibility)
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{
				PostID:  postID,
				Message: err.Error(),
			})
			tracker.RecordFailure()
			r.logger.WarnWithFields("post update failed", map[string]interface{}{
				"post_id": postID,
				"error":   err.Error(),
			})
		} else {
			summary.Updated++
			tracker.RecordSuccess()
			r.logger.DebugWithFields("post updated", map[string]interface{}{
				"post_id":    postID,
				"visibility": visibility.String(),
			})
		}
		tracker.PrintProgress(postID)

		if cp != nil {
			cp.MarkProcessed(postID, err != nil)
			if saveErr := r.checkpointMgr.Save(cp); saveErr != nil {
				r.logger.WarnWithFields("failed to save checkpoint", map[string]interface{}{
					"error": saveErr.Error(),
				})
			}
		}
	}

	tracker.PrintSummary()

	// Batch complete: the checkpoint has served its purpose
	if cp != nil {
		if err := r.checkpointMgr.Delete(); err != nil {
			r.logger.WarnWithFields("failed to delete checkpoint", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	summary.Duration = time.Since(start)

	r.logger.InfoWithFields("batch complete", map[string]interface{}{
		"updated":  summary.Updated,
		"failed":   summary.Failed,
		"skipped":  summary.Skipped,
		"duration": summary.Duration,
	})

	return summary, nil
}

// prepareCheckpoint loads or creates the checkpoint for this run. A stale
// checkpoint for a different visibility level is discarded: resuming it
// would leave posts at mixed levels.
func (r *Runner) prepareCheckpoint(userID string, visibility weibo.Visibility, opts Options) (*checkpoint.Checkpoint, error) {
	if r.checkpointMgr == nil {
		return nil, nil
	}

	if opts.ForceRestart {
		if err := r.checkpointMgr.Delete(); err != nil {
			return nil, fmt.Errorf("failed to discard checkpoint: %w", err)
		}
	}

	if opts.Resume && !opts.ForceRestart {
		cp, err := r.checkpointMgr.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load checkpoint: %w", err)
		}
		if cp != nil {
			if cp.VisibilityCode == visibility.Code() {
				r.logger.InfoWithFields("resuming from checkpoint", map[string]interface{}{
					"user_id":         cp.UserID,
					"total_processed": cp.TotalProcessed,
				})
				return cp, nil
			}
			r.logger.WarnWithFields("checkpoint targets a different visibility; starting over", map[string]interface{}{
				"checkpoint_code": cp.VisibilityCode,
				"requested_code":  visibility.Code(),
			})
		}
	}

	return r.checkpointMgr.Create(userID, visibility.Code())
}

// selectPosts applies skip and limit to the listed posts, preserving order
func selectPosts(posts []weibo.Post, skip, limit int) []weibo.Post {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(posts) {
		return nil
	}
	selected := posts[skip:]
	if limit > 0 && limit < len(selected) {
		selected = selected[:limit]
	}
	return selected
}
