// Package storage defines the vault file-system abstraction.
package storage

import "time"

// FileInfo is a lightweight listing record for one vault document.
type FileInfo struct {
	Path      string    `json:"path"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for vault file operations. Only document
// files (.md and .mermaid) are visible through it.
type Provider interface {
	// Root returns the absolute path of the vault root.
	Root() string
	// List returns metadata for every document file under dir
	// (relative to vault root).
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to
	// vault root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to vault root).
	Write(path string, content []byte) error
}
