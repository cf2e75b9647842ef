// Package tasks runs long library jobs with real-time progress reporting.
//
// # Operations
//
//  1. [Engine.BulkExport] : writes songs (all, favorites, or one playlist) to json, markdown, txt or csv
//     - a worker pool renders one file per song; csv writes one table for the whole set
//     - an export_manifest.json summarizes every file and failure
//
//  2. [Engine.Import] : reads .txt lyric files into the library
//     - title and artist come from the first line, falling back to an "Artist - Title" file name
//     - files matching an existing song (same normalized title and artist) are skipped
//
// # Progress Reporting
//
// Both operations accept an optional channel of [ProgressUpdate]. Sends use select with default so a slow or absent
// reader never blocks the job. The caller owns the channel and closes it after the call returns.
package tasks
