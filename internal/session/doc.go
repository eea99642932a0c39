// Package session holds the prompt/selection state machine that sits between a
// driver (the TUI, a test harness) and a model-backed Explorer.
//
// Every mutating command follows the same sequence: mutate the Explorer,
// copy the Explorer's canonical prompt text back into the active buffer,
// re-read the candidate list and reset the selection. If the Explorer fails
// part way through, the Explorer is pointed back at the previous buffer text
// and the session fields are left exactly as they were.
//
// Commands whose precondition does not hold return false with a nil error and
// leave the state untouched.
//
// A Session is not safe for concurrent use. Drivers that run background work
// (the continue loop) must serialize it with user commands themselves.
package session
