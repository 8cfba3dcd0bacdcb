// Package stockroom keeps track of physical parts: where they are stored, how
// many, and where they went. It is local-first and meant to be synced between
// machines by any file synchronization tool.
//
// The inventory is made of two stores:
//   - Definitions: one markdown file with a YAML front matter per part,
//     location, project or source. Unknown front matter fields are kept
//     untouched when a definition is saved.
//   - Ledger: append-only JSONL segments, one per machine and day, holding
//     the movements of parts (deliveries, moves, uses in projects, splits,
//     recounts, returns, salvages, orders and requirements).
//
// The stock is never stored: it is computed by replaying the ledger in a
// total order, so that merging the segments of several machines always
// yields the same result. Commands never refuse an entry because of the
// known stock; they raise advisories instead.
//
// This package serves as the foundational logic for the `stk` command-line
// tool.
package stockroom
