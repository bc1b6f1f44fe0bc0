package batch

import (
	"context"

	"wbprivacy/pkg/weibo"
)

// WeiboClient defines the API operations the batch runner needs
type WeiboClient interface {
	FetchAllPosts(ctx context.Context, userID string, maxPages int) ([]weibo.Post, error)
	SetVisibility(ctx context.Context, postID string, visibility weibo.Visibility) error
}
