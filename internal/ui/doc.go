// Package ui contains the Bubble Tea program that renders the command palette.
// The Model type focuses on message orchestration; the palette controller owns
// selection state, and dedicated helpers own navigation, input and rendering.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function (key presses, mouse events, resizes, load results, catalog
//     reloads).
//   - Key presses are first matched against the keymap intents (open, close,
//     select, up, down, back). Anything left over edits the query line
//     (internal/ui/input.go), and every edit is pushed to the controller.
//
// State ownership:
//   - palette.Controller holds the root, query and highlighted action, and
//     recomputes the visible set through the navigator.
//   - internal/ui/state holds the prompt text with its cursor and the list
//     viewport, which are purely presentational.
//
// Background work:
//   - Recomputing the visible set may start lazy loads. finishUpdate drains them
//     from the controller and hands them to the command bus, which runs each
//     loader in a tea.Cmd and returns a command.LoadResult that is resolved back
//     into the catalog on the update goroutine.
//   - An optional backend.Watcher polls the catalog file; its events are applied
//     by the dispatcher, which swaps the catalog held by the controller.
package ui
