// Package store provides SQLite-backed durable storage for reflections.
//
// The store implements a single append-only table. Reflections are never
// updated or deleted by this core; all mutation is single-row INSERT, so
// each append is atomic and never torn. Retention is an operational
// concern outside the engine.
//
// # Invariants
//
//   - user_id is lowercased and content NFC-normalized before persistence
//   - drift_score is persisted raw (unclamped) for audit; clamping is a
//     read-side concern of the drift governor
//   - every query includes ORDER BY created_at with an id tiebreaker so
//     results are deterministic under equal timestamps
//   - query limits are silently clamped to a configured range, never
//     rejected
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - single writer connection to avoid SQLITE_BUSY
package store
