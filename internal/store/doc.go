// Package store records test runs in SQLite.
//
// Each run is one row in runs plus one row per reported unit in
// unit_results, written in a single transaction. Unit rows keep stream
// order through seq; queries always order by it.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Schema changes are applied through PRAGMA user_version migrations.
package store
