// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package questionstore holds the board's single authoritative
// collection of questions and the merge rules that change it.
//
// A [Store] has exactly two write operations. [Store.Replace] installs
// a complete list, typically the result of a full fetch.
// [Store.Apply] folds one [questionevent.Event] into the collection,
// whether the event came from the push channel or was synthesized from
// a mutation response. The merge rules:
//
//   - Created: no-op if the id is already present, otherwise the
//     question is inserted at the front (arrival order, newest first).
//   - Answered, StatusChanged: dropped if the id is absent, otherwise
//     only the carried fields are overwritten. A zero UpdatedAt is
//     "not carried". The same field updated twice resolves to the
//     last one applied.
//
// Writers are serialized by a mutex. Readers never lock: each write
// builds a new immutable [Snapshot] and publishes it atomically, so a
// snapshot obtained from [Store.Snapshot] never changes underneath the
// holder.
//
// After [Store.Close] the collection is empty and every write is a
// no-op, so responses that arrive after teardown are discarded.
package questionstore
