package weibo

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// BaseURL is the base URL for the Weibo web API
	BaseURL = "https://weibo.com"

	// MyBlogEndpoint lists a user's own posts page by page
	MyBlogEndpoint = "/ajax/statuses/mymblog"

	// ModifyVisibleEndpoint changes the visibility of one or more posts
	ModifyVisibleEndpoint = "/ajax/statuses/modifyVisible"

	// okSuccess is the envelope flag value that signals success
	okSuccess = 1
)

// MyBlogURL constructs the URL for one page of a user's posts
func MyBlogURL(base, userID string, page int) string {
	params := url.Values{}
	params.Set("uid", userID)
	params.Set("page", strconv.Itoa(page))
	params.Set("feature", "0")

	return fmt.Sprintf("%s%s?%s", base, MyBlogEndpoint, params.Encode())
}

// ProfileURL constructs the profile page URL used as the listing Referer
func ProfileURL(base, userID string) string {
	return fmt.Sprintf("%s/u/%s", base, userID)
}
