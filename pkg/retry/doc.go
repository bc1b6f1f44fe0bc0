// Package retry provides bounded retry with exponential backoff for network
// operations against the Weibo web API.
//
// The same policy is shared by the page-fetch and mutation paths so behaviour
// cannot drift between the two call sites: up to MaxAttempts attempts, the
// wait after the k-th failed attempt being BaseDelay*2^(k-1), a successful
// response short-circuiting immediately, and no wait after the final attempt.
//
// Basic usage:
//
//	cfg := retry.DefaultConfig()
//	body, err := retry.DoWithResult(func() ([]byte, error) {
//		return client.fetch(url)
//	}, cfg)
//
// Retryability is decided by the typed errors from wbprivacy/pkg/errors:
// transport failures and non-2xx statuses retry, envelope-level failures
// (auth, api, mutation, parse) surface immediately.
package retry
