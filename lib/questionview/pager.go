// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package questionview

import "github.com/bureau-foundation/qaboard/lib/schema/question"

// DefaultPageSize is the number of questions revealed per page.
const DefaultPageSize = 20

// revealMargin is how close to the end of the revealed slice the
// cursor must come before the next page is revealed.
const revealMargin = 3

// Pager tracks how many questions of each tab are revealed. Not safe
// for concurrent use; it belongs to the UI loop.
type Pager struct {
	pageSize int
	revealed map[Tab]int

	synced  bool
	version uint64
	search  string
}

// NewPager returns a pager showing one page per tab. A non-positive
// pageSize selects DefaultPageSize.
func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{pageSize: pageSize, revealed: make(map[Tab]int)}
}

// PageSize returns the configured page size.
func (pager *Pager) PageSize() int {
	return pager.pageSize
}

// Sync records the data version and search text the next Visible call
// will be based on. If either differs from the previous Sync, every tab
// returns to its first page and Sync reports true.
func (pager *Pager) Sync(version uint64, search string) bool {
	if pager.synced && version == pager.version && search == pager.search {
		return false
	}
	pager.synced = true
	pager.version = version
	pager.search = search
	clear(pager.revealed)
	return true
}

// Limit returns how many questions of tab are revealed.
func (pager *Pager) Limit(tab Tab) int {
	if limit, ok := pager.revealed[tab]; ok {
		return limit
	}
	return pager.pageSize
}

// Visible returns the revealed prefix of items.
func (pager *Pager) Visible(tab Tab, items []question.Question) []question.Question {
	return items[:min(len(items), pager.Limit(tab))]
}

// HasMore reports whether total items exceed what is revealed.
func (pager *Pager) HasMore(tab Tab, total int) bool {
	return total > pager.Limit(tab)
}

// RevealNext reveals one more page of tab if there is more to show.
func (pager *Pager) RevealNext(tab Tab, total int) bool {
	if !pager.HasMore(tab, total) {
		return false
	}
	pager.revealed[tab] = pager.Limit(tab) + pager.pageSize
	return true
}

// Scrolled is called as the cursor moves within tab. When the cursor
// comes within a few rows of the end of the revealed slice, the next
// page is revealed.
func (pager *Pager) Scrolled(tab Tab, cursor, total int) bool {
	if cursor < pager.Limit(tab)-revealMargin {
		return false
	}
	return pager.RevealNext(tab, total)
}
