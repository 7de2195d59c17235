// Package textutil provides small text helpers shared by the record model, the
// vehicle registry, and the CLI: Unicode-aware case folding for label lookups,
// display titles, note joining, and token sanitization.
package textutil
