// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package textmatch provides multi-phrase text scanning for the heuristic
// gate, built on an Aho-Corasick automaton. Scanning a chunk against all
// configured marker phrases costs O(n + z) regardless of how many phrases
// are registered, which keeps the gate cheap even with large phrase lists.
package textmatch

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Matcher finds all occurrences of a set of phrases in a text in one pass.
// Matching is case-insensitive and respects word boundaries: a phrase
// embedded in a longer word ("subscribe" inside "subscribers") is not a
// hit. A Matcher is immutable after Build and is safe for concurrent use.
type Matcher struct {
	root    *node
	phrases []Phrase
	lengths []int
	built   bool
}

// Phrase is a registered search phrase tagged with a marker category.
type Phrase struct {
	// Text is the phrase to find.
	Text string

	// Category tags the phrase (e.g. a gate rule ID).
	Category string
}

// Hit is one phrase occurrence in the scanned text.
type Hit struct {
	// Text is the matched phrase.
	Text string

	// Category is the phrase's marker category.
	Category string

	// Position is the byte offset of the match start.
	Position int
}

type node struct {
	children map[rune]*node
	failure  *node
	output   []int
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// New creates an empty matcher. Add phrases then call Build.
func New() *Matcher {
	return &Matcher{root: newNode()}
}

// Add registers a phrase under the given category. No-op after Build.
func (m *Matcher) Add(text, category string) {
	if text == "" || m.built {
		return
	}
	m.phrases = append(m.phrases, Phrase{Text: text, Category: category})
}

// AddAll registers multiple phrases under one category.
func (m *Matcher) AddAll(texts []string, category string) {
	for _, t := range texts {
		m.Add(t, category)
	}
}

// Build constructs the automaton: trie insertion followed by BFS failure
// links. Must be called once after registration and before Scan.
func (m *Matcher) Build() {
	if m.built {
		return
	}

	m.root = newNode()
	m.lengths = make([]int, len(m.phrases))
	for i, p := range m.phrases {
		lowered := strings.ToLower(p.Text)
		m.lengths[i] = len(lowered)
		m.insert(i, lowered)
	}
	m.linkFailures()
	m.built = true
}

func (m *Matcher) insert(index int, text string) {
	n := m.root
	for _, ch := range text {
		if n.children[ch] == nil {
			n.children[ch] = newNode()
		}
		n = n.children[ch]
	}
	n.output = append(n.output, index)
}

func (m *Matcher) linkFailures() {
	queue := make([]*node, 0, len(m.root.children))
	for _, child := range m.root.children {
		child.failure = m.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}

			if fail == nil {
				child.failure = m.root
			} else {
				child.failure = fail.children[ch]
				// Suffix matches surface through the failure link.
				child.output = append(child.output, child.failure.output...)
			}
		}
	}
}

// Scan returns every word-bounded phrase occurrence in text, in positional
// order. Returns nil before Build or when no phrase is registered.
func (m *Matcher) Scan(text string) []Hit {
	if !m.built || len(m.phrases) == 0 {
		return nil
	}

	lower := strings.ToLower(text)
	var hits []Hit
	n := m.root

	for i, ch := range lower {
		for n != nil && n.children[ch] == nil {
			n = n.failure
		}
		if n == nil {
			n = m.root
			continue
		}
		n = n.children[ch]

		for _, idx := range n.output {
			end := i + utf8.RuneLen(ch)
			start := end - m.lengths[idx]
			if !wordBounded(lower, start, end) {
				continue
			}
			p := m.phrases[idx]
			hits = append(hits, Hit{
				Text:     p.Text,
				Category: p.Category,
				Position: start,
			})
		}
	}

	return hits
}

// wordBounded reports whether the match at [start, end) is a whole word,
// i.e. not flanked by a letter or digit on either side.
func wordBounded(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Categories returns the distinct categories hit in text.
func (m *Matcher) Categories(text string) map[string]int {
	hits := m.Scan(text)
	if len(hits) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, h := range hits {
		counts[h.Category]++
	}
	return counts
}
