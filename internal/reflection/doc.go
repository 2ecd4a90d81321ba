// Package reflection provides the shared domain types for reflectd.
//
// This package contains type and error definitions only. All other internal
// packages import reflection; reflection imports nothing internal. This
// keeps it the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Reflections are immutable once written (append-only store)
//   - DriftScore carries the raw caller-supplied value, never a clamped copy
//   - All ordering uses the store-assigned created_at timestamp
//   - All JSON tags use snake_case
package reflection
