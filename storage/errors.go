// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import "errors"

var (
	// ErrNotFound is returned when no candidate is stored under a key.
	ErrNotFound = errors.New("candidate not found")

	// ErrDuplicateKey is returned when a candidate ID is already stored.
	ErrDuplicateKey = errors.New("duplicate candidate id")

	// ErrStorageClosed is returned by a backend after Close.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed wraps encode and decode failures of stored records.
	ErrSerializationFailed = errors.New("candidate serialization failed")

	// ErrTruncatedData means a stored record ended before all fields were read.
	ErrTruncatedData = errors.New("truncated candidate record")
)
