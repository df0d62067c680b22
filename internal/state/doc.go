// Package state owns the editing session of a travel book.
//
// # Overview
//
// A Store holds three things: the full list of books as last loaded or
// saved, the book currently being edited, and a pristine copy of that book
// taken when it was selected or last saved. The UI reads immutable
// Snapshots and drives the session through mutator methods; the autosaver
// subscribes to changes and calls Save.
//
// # Dirty Tracking
//
// Every mutator clones the current book, applies its change to the clone
// and installs it, then sets the dirty flag. No equality check is made, so
// an edit that leaves the book unchanged still marks the session dirty.
// Select, Save and Discard are the only operations that clear the flag.
//
// Mutators called with no current book, or with a day outside the trip,
// do nothing and leave the flag alone. Deletes of unknown ids still count
// as edits.
//
// # Itinerary Phases
//
// Each trip day moves between two phases:
//
//	selection ──ConfirmOrdering (≥2 selected)──→ ordering
//	    ↑                                          │
//	    └──────────── BackToSelection ─────────────┘
//
// In selection, ToggleSelection builds the set of POIs for the day. In
// ordering, Reorder and MoveOrdered arrange them and AddRoute and
// DeleteRoute connect them. Removing a POI from an ordered day renumbers
// the remaining POIs 1..N and drops every route touching it.
//
// ChangeDay switches the active day without touching any plan. ResetDay
// wipes a day back to an empty selection.
//
// # Persistence
//
// Save commits in memory first and then writes the whole list through the
// configured objectstore.Store on a background goroutine. Writes are queued
// and run one at a time in submission order. A failed write is logged,
// recorded as LastSaveError and reported by the returned SaveResult; the
// in-memory commit is never undone.
//
// # Observers
//
// Subscribe registers a callback that receives a fresh Snapshot after each
// change. Callbacks run outside the store lock on the goroutine that made
// the change, so they must not block for long.
package state
