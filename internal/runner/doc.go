// Package runner executes resolved units one at a time and streams what
// happens as Events.
//
// Event Stream:
//
// For every unit the runner emits, in order:
//   - At, when the unit's path differs from the previous unit's
//   - Skip, for units resolved to skip (the body is not called)
//   - Test, then Pass or Fail, for every other unit
//
// The stream is a channel, so a slow consumer holds the runner back. With
// bail enabled the stream ends right after the first Fail.
//
// Bodies run sequentially on the runner's goroutine. A body that never
// returns stalls the run; there are no timeouts. The context is observed
// between units and while a send is blocked, never mid-body.
package runner
