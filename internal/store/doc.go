// Package store provides file-based persistence for vaulted blobs.
//
// BlobFileStore keeps encrypted document bytes in a flat directory, one file
// per content address (sha256-<hex>). Writes go through a temp file and an
// atomic rename, so a crash never leaves a partially written blob under its
// final name. Identity and credential state is not persisted here; it lives
// only in the in-memory vault.
package store
