// Package scenes holds the Scene data model shared by every pipeline stage
// and the normalizer that turns untrusted model output into a canonical,
// deduplicated, schema-complete scene list. It also owns the scene_NN
// artifact naming convention used to locate per-scene images, audio, and
// clips.
package scenes
