// Package ui provides the terminal interface for tripbook.
//
// The UI is a Bubble Tea program. Model is the root state; each view lives
// in its own file with a handle*Key function and a render* function:
//
//   - books.go: book list, open/create/edit/delete
//   - pois.go: place list with search, category filter, sort and hierarchy
//   - planner.go: per-day selection and ordering, routes between stops
//   - memos.go: memos and tickets
//   - overview.go: per-book summary
//   - activity.go: tail of the application log
//
// # Event Flow
//
//  1. Run creates the program and subscribes to state.Store.
//  2. Key handlers call store mutators directly, then read a fresh snapshot.
//  3. Changes made elsewhere (autosave, remote mirror) reach the model as
//     snapshotMsg through a non-blocking relay.
//  4. Saves run in commands and report back as saveDoneMsg.
//
// Forms and confirmations are modals. A modal's submit function captures
// only the store, never the Model, since Bubble Tea copies the Model on
// every update.
package ui
