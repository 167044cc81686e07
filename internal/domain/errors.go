package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Engine and questionnaire operations never return these to their callers;
// they surface at storage, catalog and transport seams only.

var (
	// Storage errors
	ErrStorageUnavailable = errors.New("progress storage unavailable")
	ErrCorruptRecord      = errors.New("stored progress record is unreadable")

	// Catalog lookup misses
	ErrIslandNotFound    = errors.New("island not found")
	ErrModuleNotFound    = errors.New("module not found")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrInvalidCatalog    = errors.New("catalog definition invalid")

	// Questionnaire sessions
	ErrSessionNotFound = errors.New("questionnaire session not found")
)
