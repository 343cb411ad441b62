// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardserver

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzhttp"
	"github.com/zeebo/blake3"
)

// listingTagKey keys the BLAKE3 hash behind listing ETags so tags never
// collide with plain content hashes of the same bytes.
var listingTagKey = [32]byte{
	'q', 'a', 'b', 'o', 'a', 'r', 'd', '.', 'l', 'i', 's', 't', 'i', 'n', 'g',
}

// compress gzips responses for clients that send Accept-Encoding: gzip.
// Bodies below gzhttp's minimum size go out uncompressed.
func compress(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

// listingTag returns the strong ETag for an encoded listing.
func listingTag(body []byte) string {
	hasher, err := blake3.NewKeyed(listingTagKey[:])
	if err != nil {
		panic("boardserver: listing tag key: " + err.Error())
	}
	hasher.Write(body)
	sum := hasher.Sum(nil)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// matchesTag reports whether an If-None-Match header value names tag.
func matchesTag(header, tag string) bool {
	for candidate := range strings.SplitSeq(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}

func (server *Server) handleListQuestions(writer http.ResponseWriter, request *http.Request) {
	body, err := json.Marshal(server.board.listQuestions())
	if err != nil {
		server.logger.Error("encoding question listing", "error", err)
		writeError(writer, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	tag := listingTag(body)
	writer.Header().Set("ETag", tag)
	if match := request.Header.Get("If-None-Match"); match != "" && matchesTag(match, tag) {
		writer.WriteHeader(http.StatusNotModified)
		return
	}
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	writer.Write(body)
}
