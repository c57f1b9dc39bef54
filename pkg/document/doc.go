// Package document implements the single-object store: one opaque text
// value per store, replacing a whole map of typed scalars with a single
// PersistentCell[string] under the identity codec. Encryption, if
// configured, sits below the codec exactly as it does for PreferenceStore
// and Engine — a document store is the degenerate case of the same
// PersistentCell machinery with T = string.
package document
