// Package imagegen creates scene key art through the Hugging Face
// inference API. Generation is idempotent per artifact path so rerunning
// a project never re-renders images that already exist on disk.
package imagegen
