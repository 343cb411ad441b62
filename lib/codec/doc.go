// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration shared by both ends of
// the push channel.
//
// Push frames are JSON text by default. A server may instead send
// binary frames carrying the same {type, data} envelope encoded as
// CBOR; the board server does this when configured with
// frame_format: cbor, and the event decoder accepts either. Both ends
// encode through this package so that the same envelope always
// produces the same bytes.
//
// Wire types carry only json struct tags. fxamacker/cbor falls back
// to json tags when no cbor tag is present, so one tag set names the
// fields for both formats.
package codec
