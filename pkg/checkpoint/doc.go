// Package checkpoint persists batch progress so an interrupted visibility
// run can resume without re-issuing mutations for posts it already handled.
//
// One checkpoint file exists per user id, stored under the OS data
// directory and written atomically (temp file plus rename). A checkpoint is
// bound to the visibility level it was created for; resuming with a
// different level discards it.
package checkpoint
