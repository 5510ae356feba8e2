// Package kv implements the key-value backends behind the cake store:
// an in-memory map, a single JSONL file rewritten atomically, a SQLite table
// (modernc.org/sqlite), and a Pebble LSM store. Every backend satisfies
// types.KV and is safe for concurrent use.
package kv
