// Package domain defines core data models, contracts and error values shared
// across didvault. It contains plain types (records, keys, blobs) and
// interfaces only; the subpackages hold the definitions and this package
// re-exports them as aliases.
package domain
