// Package media materializes legacy attachments as stored files and media entities.
//
// A [Materializer] resolves the attachment's remote URL, waits on a rate limiter, downloads the bytes into
// [Storage] (public://<directory>/<name>, replacing same-named files), classifies the MIME type into a media
// bundle and creates the media entity through its [Store].
package media
