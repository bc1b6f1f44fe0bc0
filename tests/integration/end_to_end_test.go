package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbprivacy/pkg/batch"
	"wbprivacy/pkg/checkpoint"
	"wbprivacy/pkg/config"
	"wbprivacy/pkg/logger"
	"wbprivacy/pkg/weibo"
)

const testCookie = "SUB=abc123; XSRF-TOKEN=integration-token; SSOLoginState=1756200000"

const testUserID = "1234567890"

// fixturePages is a two-page listing; a request for page 3 returns an empty
// list and terminates pagination
func fixturePages() [][]mockPost {
	return [][]mockPost{
		{
			{ID: 1001, Text: "first post", CreatedAt: "Mon Aug 25 10:00:00 +0800 2025"},
			{ID: 1002, Text: "second post", CreatedAt: "Sun Aug 24 09:30:00 +0800 2025"},
			{ID: 1003, Text: "third post", CreatedAt: "Sat Aug 23 21:15:00 +0800 2025"},
		},
		{
			{ID: 1004, Text: "fourth post", CreatedAt: "Fri Aug 22 18:00:00 +0800 2025"},
			{ID: 1005, Text: "fifth post", CreatedAt: "Thu Aug 21 08:45:00 +0800 2025"},
		},
	}
}

func newTestClient(t *testing.T, server *MockWeiboServer) *weibo.Client {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Client.Timeout = 5 * time.Second
	cfg.Client.PageDelay = 0
	cfg.Retry.BaseDelay = time.Millisecond
	cfg.Retry.MaxDelay = 5 * time.Millisecond

	client, err := weibo.NewClientWithConfig(testCookie, cfg, logger.NewTestLogger())
	require.NoError(t, err)
	client.SetBaseURL(server.URL())
	return client
}

func TestHideEveryPostEndToEnd(t *testing.T) {
	server := NewMockWeiboServer(fixturePages())
	defer server.Close()

	client := newTestClient(t, server)

	mgr, err := checkpoint.NewManagerInDir(t.TempDir(), testUserID)
	require.NoError(t, err)

	runner := batch.NewRunner(client, 0, logger.NewTestLogger())
	runner.SetCheckpointManager(mgr)

	summary, err := runner.Run(context.Background(), testUserID, weibo.VisibilityFriendsOnly, batch.Options{})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Listed)
	assert.Equal(t, 5, summary.Selected)
	assert.Equal(t, 5, summary.Updated)
	assert.Zero(t, summary.Failed)
	assert.Zero(t, summary.Skipped)

	// Mutations arrive in listing order with the friends-only wire code
	updated := server.Updated()
	require.Len(t, updated, 5)
	for i, want := range []string{"1001", "1002", "1003", "1004", "1005"} {
		assert.Equal(t, want, updated[i].PostID)
		assert.Equal(t, "2", updated[i].Visible)
	}

	assert.Equal(t, "integration-token", server.LastXSRFToken())

	// Three listing requests: two pages plus the empty terminator
	assert.Equal(t, 3, server.ListRequests())

	// Completed batch leaves no checkpoint behind
	assert.False(t, mgr.Exists())
}

func TestListingEnvelopeFailureAborts(t *testing.T) {
	server := NewMockWeiboServer(fixturePages())
	defer server.Close()
	server.SetListEnvelopeCode(-100)

	client := newTestClient(t, server)
	runner := batch.NewRunner(client, 0, logger.NewTestLogger())

	summary, err := runner.Run(context.Background(), testUserID, weibo.VisibilityPrivate, batch.Options{})
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Contains(t, err.Error(), "listing failed")

	// Envelope failures are not retryable and nothing gets mutated
	assert.Equal(t, 1, server.ListRequests())
	assert.Zero(t, server.ModifyRequests())
}

func TestTransientListingErrorsAreRetried(t *testing.T) {
	server := NewMockWeiboServer([][]mockPost{
		{
			{ID: 2001, Text: "only post", CreatedAt: "Mon Aug 25 10:00:00 +0800 2025"},
		},
	})
	defer server.Close()
	server.SetListFailures(2)

	client := newTestClient(t, server)

	posts, err := client.FetchAllPosts(context.Background(), testUserID, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "2001", string(posts[0].ID))

	// Two 503s, the retried page 1, then the empty page 2
	assert.Equal(t, 4, server.ListRequests())
}

func TestMutationFailureDoesNotStopBatch(t *testing.T) {
	server := NewMockWeiboServer(fixturePages())
	defer server.Close()
	server.FailModify("1002", "operation too frequent")

	client := newTestClient(t, server)
	runner := batch.NewRunner(client, 0, logger.NewTestLogger())

	summary, err := runner.Run(context.Background(), testUserID, weibo.VisibilityFriendsOnly, batch.Options{})
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Updated)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "1002", summary.Failures[0].PostID)
	assert.Contains(t, summary.Failures[0].Message, "operation too frequent")

	// The failure envelope is definitive: one request for that post, no retry
	assert.Equal(t, 5, server.ModifyRequests())
}

func TestTransientMutationErrorsAreRetried(t *testing.T) {
	server := NewMockWeiboServer(fixturePages())
	defer server.Close()
	server.FailModifyTransiently("1003", 2)

	client := newTestClient(t, server)
	runner := batch.NewRunner(client, 0, logger.NewTestLogger())

	summary, err := runner.Run(context.Background(), testUserID, weibo.VisibilityFriendsOnly, batch.Options{})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Updated)
	assert.Zero(t, summary.Failed)

	// Five posts plus two retried attempts for the flaky one
	assert.Equal(t, 7, server.ModifyRequests())
}

func TestUnparsableMutationBodyCountsAsSuccess(t *testing.T) {
	server := NewMockWeiboServer(fixturePages())
	defer server.Close()
	server.GarbageModifyBody("1004")

	client := newTestClient(t, server)
	runner := batch.NewRunner(client, 0, logger.NewTestLogger())

	summary, err := runner.Run(context.Background(), testUserID, weibo.VisibilityFansOnly, batch.Options{})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Updated)
	assert.Zero(t, summary.Failed)
}

func TestSkipAndLimitSelection(t *testing.T) {
	server := NewMockWeiboServer(fixturePages())
	defer server.Close()

	client := newTestClient(t, server)
	runner := batch.NewRunner(client, 0, logger.NewTestLogger())

	summary, err := runner.Run(context.Background(), testUserID, weibo.VisibilityFriendsOnly, batch.Options{
		Skip:  1,
		Limit: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Listed)
	assert.Equal(t, 2, summary.Selected)
	assert.Equal(t, 2, summary.Updated)

	updated := server.Updated()
	require.Len(t, updated, 2)
	assert.Equal(t, "1002", updated[0].PostID)
	assert.Equal(t, "1003", updated[1].PostID)
}

func TestDryRunIssuesNoMutations(t *testing.T) {
	server := NewMockWeiboServer(fixturePages())
	defer server.Close()

	client := newTestClient(t, server)
	runner := batch.NewRunner(client, 0, logger.NewTestLogger())

	summary, err := runner.Run(context.Background(), testUserID, weibo.VisibilityPrivate, batch.Options{
		DryRun: true,
	})
	require.NoError(t, err)

	assert.True(t, summary.DryRun)
	assert.Equal(t, 5, summary.Selected)
	assert.Zero(t, summary.Updated)
	assert.Zero(t, server.ModifyRequests())
}

func TestResumeSkipsProcessedPosts(t *testing.T) {
	server := NewMockWeiboServer(fixturePages())
	defer server.Close()

	client := newTestClient(t, server)

	mgr, err := checkpoint.NewManagerInDir(t.TempDir(), testUserID)
	require.NoError(t, err)

	// A previous interrupted run already handled the first two posts
	cp, err := mgr.Create(testUserID, weibo.VisibilityFriendsOnly.Code())
	require.NoError(t, err)
	cp.MarkProcessed("1001", false)
	cp.MarkProcessed("1002", false)
	require.NoError(t, mgr.Save(cp))

	runner := batch.NewRunner(client, 0, logger.NewTestLogger())
	runner.SetCheckpointManager(mgr)

	summary, err := runner.Run(context.Background(), testUserID, weibo.VisibilityFriendsOnly, batch.Options{
		Resume: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 3, summary.Updated)

	updated := server.Updated()
	require.Len(t, updated, 3)
	assert.Equal(t, "1003", updated[0].PostID)

	assert.False(t, mgr.Exists(), "completed batch deletes its checkpoint")
}
