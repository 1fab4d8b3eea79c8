// Package editor implements the block-ordering and history engine of the page
// editor: an ordered block sequence with stable ids, drop-position resolution
// for drag gestures, a single selection mirrored into an options panel, and a
// linear snapshot history.
//
// All state of one editor lives in a Session. A Session is not safe for
// concurrent use; callers that share one across goroutines serialise access
// (see service.EditorService).
package editor
