// Package layering copies and overlays JSON-like documents.
package layering
