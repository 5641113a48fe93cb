// Package sqlitestore implements registry.Adapter on a SQLite database.
//
// The store keeps records, their feature flags, and directed reference edges in
// three tables linked by foreign keys with ON UPDATE CASCADE, so renaming a record
// carries its flags and edges along. The connection pool is limited to a single
// connection, which matches the engine's single-writer expectation.
package sqlitestore
