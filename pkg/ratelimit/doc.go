// Package ratelimit provides fixed-rate request pacing.
//
// Unlike the retry backoff, which reacts to failures, the pacer throttles
// successful traffic: the lister pauses between page fetches and the batch
// runner pauses between visibility mutations, so no two requests are ever
// issued back to back.
package ratelimit
