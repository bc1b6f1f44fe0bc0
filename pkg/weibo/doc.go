// Package weibo provides a client for the Weibo web API, covering the two
// operations the visibility tool needs: paginated enumeration of a user's
// posts and per-post visibility mutation.
//
// A client is bound to one browser session: it is constructed from a raw
// cookie blob, derives the XSRF anti-forgery token from it, and replays both
// on every request. Construction fails if the token cannot be derived.
//
//	client, err := weibo.NewClient(cookie, 30*time.Second, log)
//	if err != nil {
//	    // cookie is missing the XSRF-TOKEN segment
//	}
//
//	posts, err := client.FetchAllPosts(ctx, "1234567890", 0)
//	for _, post := range posts {
//	    err := client.SetVisibility(ctx, string(post.ID), weibo.VisibilityFriendsOnly)
//	}
//
// All calls are sequential with fixed inter-page pacing and bounded
// exponential retry; errors are typed (wbprivacy/pkg/errors) so callers can
// distinguish per-item mutation failures from listing failures.
package weibo
