// Package ui contains the Bubble Tea program that drives a token exploration
// session. The Model type focuses on message orchestration, while dedicated
// helpers own key handling, text entry, the continue loop and rendering.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages. Messages are
//     routed through a typed handler registry so each tea.Msg is handled by a
//     focused function (key presses, window sizes, continue steps, spinner
//     ticks).
//   - Key presses are interpreted according to the current mode. Explore mode
//     maps keys to session commands (internal/ui/keys.go, explore.go). Edit
//     and search modes forward keys to a textarea or textinput and apply the
//     result when the user confirms (internal/ui/entry.go).
//
// State ownership:
//   - Prompt buffers, the selection cursor and the candidate list belong to
//     the session.Session. The UI never talks to the model directly; every
//     change goes through a session command run by the internal/ui/command
//     bus, which traces the outcome.
//   - Per-buffer base prompts and the candidate viewport live in
//     internal/ui/state. Token numbers, probability colours and
//     end-of-sequence status are recomputed from the session on every render.
//
// Continue loop:
//   - Pressing c starts a cancellable loop. Each step is a message scheduled
//     with tea.Tick, so steps are handled inside Update like any key press and
//     never race with user input. The step checks the loop's context and the
//     end token before sampling, and the loop ends on cancellation, the end
//     token, a rejected sample, an error or the configured step limit. While
//     it runs, keys that would change the prompt are ignored.
package ui
