// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import "errors"

var (
	// ErrPathRequired is returned when a persistent database has no path.
	ErrPathRequired = errors.New("path is required for persistent database")

	// ErrInvalidDiscardRatio is returned for a GC ratio outside (0, 1].
	ErrInvalidDiscardRatio = errors.New("gc discard ratio must be in (0, 1]")

	// ErrSnapshotNotFound is returned when no snapshot has the given name.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrInvalidName is returned for an empty or malformed snapshot name.
	ErrInvalidName = errors.New("invalid snapshot name")

	// ErrFingerprintMismatch is returned when a reloaded graph does not
	// match the fingerprint stored with it.
	ErrFingerprintMismatch = errors.New("snapshot fingerprint mismatch")
)
