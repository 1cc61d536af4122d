// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package gate

import (
	"regexp"
	"strings"

	"github.com/curiofeed/curio/internal/textmatch"
)

// RuleID identifies a gate rule that fired during evaluation.
type RuleID string

const (
	// RuleLengthFloor fires for chunks under the minimum word count.
	// Such chunks carry insufficient signal to judge and always fail.
	RuleLengthFloor RuleID = "length_floor"

	// RuleCTABlock fires for call-to-action/advertising content: a
	// directive verb co-occurring with a URL or promotional noun.
	// This is a hard block regardless of other signal.
	RuleCTABlock RuleID = "cta_block"

	// RuleIntroOutro fires for greeting/thanks phrases near the chunk
	// boundaries (show intros, outros, pleasantries).
	RuleIntroOutro RuleID = "intro_outro"

	// RuleNamedConcept fires for named-concept phrasing such as
	// "the Eisenhower method" or "the compounding effect".
	RuleNamedConcept RuleID = "named_concept"

	// RuleContrastPair fires for "X vs Y" contrast framing.
	RuleContrastPair RuleID = "contrast_pair"

	// RuleCausal fires for causal connectives (because, therefore, ...).
	RuleCausal RuleID = "causal_connective"

	// RuleNumericEvidence fires for concrete numbers and percentages.
	RuleNumericEvidence RuleID = "numeric_evidence"

	// RuleProperNoun fires for consecutive capitalized words, a weak
	// proxy for named people, companies, and products.
	RuleProperNoun RuleID = "proper_noun"

	// RuleExample fires for explicit example markers (for example,
	// such as, case in point).
	RuleExample RuleID = "example_marker"
)

// Result is the gate's verdict on one chunk.
type Result struct {
	// Score is the coarse quality estimate in [0, 100].
	Score float64 `json:"score"`

	// Pass indicates whether the chunk proceeds to later stages.
	Pass bool `json:"pass"`

	// Reasons lists the rules that fired, block and bonus alike.
	Reasons []RuleID `json:"reasons,omitempty"`
}

// Config holds the gate tunables.
type Config struct {
	// MinWords is the length floor; shorter chunks always fail.
	// Default: 30.
	MinWords int

	// NeutralScore is the baseline for chunks with no strong signal
	// either way. Default: 50, which routes ambiguous chunks into the
	// downstream borderline band.
	NeutralScore float64

	// BoundaryFraction is how much of the text's head and tail counts
	// as "near the boundary" for intro/outro detection. Default: 0.25.
	BoundaryFraction float64
}

// DefaultConfig returns the production gate defaults.
func DefaultConfig() Config {
	return Config{
		MinWords:         30,
		NeutralScore:     50,
		BoundaryFraction: 0.25,
	}
}

// Bonus weights per insight category. Additive, capped at 100 overall.
var insightBonus = map[RuleID]float64{
	RuleNamedConcept:    12,
	RuleContrastPair:    10,
	RuleCausal:          8,
	RuleNumericEvidence: 8,
	RuleProperNoun:      6,
	RuleExample:         8,
}

// introOutroPenalty is subtracted per distinct boundary phrase (max two).
const introOutroPenalty = 25

var (
	urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|\b[a-z0-9][a-z0-9-]*\.(?:com|org|net|io|co|ai)\b)`)

	namedConceptPattern = regexp.MustCompile(`(?i)\bthe [a-z]+[ -](?:principle|framework|effect|rule|law|method|model|matrix|paradox|technique)\b`)

	contrastPattern = regexp.MustCompile(`(?i)\b[\w-]+ (?:vs\.?|versus) [\w-]+\b`)

	numericPattern = regexp.MustCompile(`\b\d+(?:[.,]\d+)?%?\b`)

	properNounPattern = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)
)

var directiveVerbs = []string{
	"sign up", "signup", "subscribe", "visit", "check out", "click",
	"download", "join now", "follow us", "use code", "promo code",
	"head over to", "leave a review",
}

var promoNouns = []string{
	"newsletter", "inbox", "channel", "discount", "coupon", "sponsor",
	"patreon", "merch",
}

var boundaryPhrases = []string{
	"thanks for having me", "thanks for listening", "thank you for listening",
	"thanks for tuning in", "welcome to the show", "welcome back to",
	"glad to be here", "great to be here", "my guest today",
	"that's all for today", "see you next time", "see you in the next",
	"before we wrap up", "without further ado",
}

var causalPhrases = []string{
	"because", "therefore", "as a result", "which means", "leads to",
	"consequently", "the reason is", "that's why",
}

var examplePhrases = []string{
	"for example", "for instance", "such as", "case in point",
	"to illustrate", "a concrete example",
}

const (
	categoryDirective = "directive"
	categoryPromo     = "promo"
	categoryBoundary  = "boundary"
	categoryCausal    = "causal"
	categoryExample   = "example"
)

// Gate is the cheap lexical first-pass classifier. It rejects
// non-substantive chunks (ads, calls-to-action, intros/outros) and assigns
// a coarse quality estimate for the rest. The gate optimizes for recall:
// ambiguous chunks pass with a neutral score and precision is deferred to
// the embedding and judge stages. Evaluate never fails.
//
// A Gate is immutable after construction and safe for concurrent use.
type Gate struct {
	cfg     Config
	phrases *textmatch.Matcher
}

// New creates a gate with the given configuration.
func New(cfg Config) *Gate {
	if cfg.MinWords <= 0 {
		cfg.MinWords = 30
	}
	if cfg.NeutralScore <= 0 {
		cfg.NeutralScore = 50
	}
	if cfg.BoundaryFraction <= 0 || cfg.BoundaryFraction > 0.5 {
		cfg.BoundaryFraction = 0.25
	}

	m := textmatch.New()
	m.AddAll(directiveVerbs, categoryDirective)
	m.AddAll(promoNouns, categoryPromo)
	m.AddAll(boundaryPhrases, categoryBoundary)
	m.AddAll(causalPhrases, categoryCausal)
	m.AddAll(examplePhrases, categoryExample)
	m.Build()

	return &Gate{cfg: cfg, phrases: m}
}

// Evaluate classifies one chunk of text. It is total: any input, including
// empty text, yields a Result.
func (g *Gate) Evaluate(text string) Result {
	words := len(strings.Fields(text))
	hits := g.phrases.Scan(text)

	score := g.cfg.NeutralScore
	var reasons []RuleID
	pass := true

	// Insight markers: additive bonus, capped at 100.
	bonus := 0.0
	if namedConceptPattern.MatchString(text) {
		bonus += insightBonus[RuleNamedConcept]
		reasons = append(reasons, RuleNamedConcept)
	}
	if contrastPattern.MatchString(text) {
		bonus += insightBonus[RuleContrastPair]
		reasons = append(reasons, RuleContrastPair)
	}
	if hasCategory(hits, categoryCausal) {
		bonus += insightBonus[RuleCausal]
		reasons = append(reasons, RuleCausal)
	}
	if numericPattern.MatchString(text) {
		bonus += insightBonus[RuleNumericEvidence]
		reasons = append(reasons, RuleNumericEvidence)
	}
	if properNounPattern.MatchString(text) {
		bonus += insightBonus[RuleProperNoun]
		reasons = append(reasons, RuleProperNoun)
	}
	if hasCategory(hits, categoryExample) {
		bonus += insightBonus[RuleExample]
		reasons = append(reasons, RuleExample)
	}
	score += bonus

	// Intro/outro markers near chunk boundaries.
	boundaryHits := g.countBoundaryHits(text, hits)
	if boundaryHits > 0 {
		if boundaryHits > 2 {
			boundaryHits = 2
		}
		score -= float64(boundaryHits) * introOutroPenalty
		reasons = append(reasons, RuleIntroOutro)

		// Boundary chatter with no substantive signal is filler.
		if bonus == 0 {
			pass = false
		}
	}

	// CTA/ad hard block: directive verb co-occurring with a URL or
	// promotional noun overrides everything else.
	if hasCategory(hits, categoryDirective) && (urlPattern.MatchString(text) || hasCategory(hits, categoryPromo)) {
		reasons = append(reasons, RuleCTABlock)
		pass = false
		if score > 15 {
			score = 15
		}
	}

	// Length floor: too short to judge.
	if words < g.cfg.MinWords {
		reasons = append(reasons, RuleLengthFloor)
		pass = false
		if score > 25 {
			score = 25
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Result{Score: score, Pass: pass, Reasons: reasons}
}

// countBoundaryHits counts distinct boundary-phrase hits that fall inside
// the head or tail window of the text.
func (g *Gate) countBoundaryHits(text string, hits []textmatch.Hit) int {
	n := len(text)
	if n == 0 {
		return 0
	}
	window := int(float64(n) * g.cfg.BoundaryFraction)

	seen := make(map[string]struct{})
	for _, h := range hits {
		if h.Category != categoryBoundary {
			continue
		}
		if h.Position <= window || h.Position >= n-window-len(h.Text) {
			seen[h.Text] = struct{}{}
		}
	}
	return len(seen)
}

func hasCategory(hits []textmatch.Hit, category string) bool {
	for _, h := range hits {
		if h.Category == category {
			return true
		}
	}
	return false
}
