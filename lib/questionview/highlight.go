// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package questionview

import (
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

var (
	algoInit sync.Once
	slabPool = sync.Pool{New: func() any { return util.MakeSlab(100*1024, 2048) }}
)

// MatchRange locates the first case-insensitive occurrence of search
// in text and returns its rune offsets [start, end). Renderers use it
// to highlight the part of a row that made it match.
func MatchRange(text, search string) (start, end int, ok bool) {
	if search == "" || text == "" {
		return 0, 0, false
	}
	algoInit.Do(func() { algo.Init("default") })

	slab := slabPool.Get().(*util.Slab)
	defer slabPool.Put(slab)

	chars := util.ToChars([]byte(text))
	pattern := []rune(strings.ToLower(search))
	result, _ := algo.ExactMatchNaive(false, false, true, &chars, pattern, false, slab)
	if result.Start < 0 || result.End <= result.Start {
		return 0, 0, false
	}
	return result.Start, result.End, true
}
