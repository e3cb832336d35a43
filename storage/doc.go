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

// Package storage holds the candidate pool behind a repository interface.
//
// The pool is written once at startup (catalog load plus embedding) and
// read many times afterwards. Consumers depend on CandidateRepository and
// never on the BadgerDB types directly:
//
//	repo, err := badger.NewMemoryRepository()  // returns storage.CandidateRepository
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// Records are encoded with the MUS binary format (see MarshalCandidate).
//
// All repository implementations must be safe for concurrent use and
// accept a context.Context on every method.
package storage
