// Package tasks runs long collection operations with real-time progress reporting.
//
// # Bulk Export
//
// [Exporter.ExportCollections] writes every collection (or a chosen subset)
// to disk:
//
//  1. Lists collections from the catalog
//  2. Fetches each collection's tracks, paced by a rate limiter
//  3. Hands each fetched collection to a pool of writer goroutines
//  4. Writes an export_manifest.json summarising successes and failures
//
// A failed fetch or write marks that collection failed and the export carries on.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters and a message.
// Updates use select with default so a slow reader never stalls an export.
package tasks
