package pii

import (
	"iter"
	"regexp"
	"slices"
)

// Category names a class of sensitive value.
type Category string

const (
	CategoryEmail      Category = "email"
	CategoryPhone      Category = "phone"
	CategorySSN        Category = "ssn"
	CategoryCreditCard Category = "credit_card"
	CategoryIPAddress  Category = "ip_address"

	// CategoryAddress and CategoryName are never detected in free text. They exist so
	// structured-record transforms can tag fields with them.
	CategoryAddress Category = "address"
	CategoryName    Category = "name"
)

// Span is one detected occurrence. Start and End are byte offsets into the scanned text.
type Span struct {
	Category Category
	Value    string
	Start    int
	End      int
}

// Matcher scans text for a single category.
type Matcher interface {
	Category() Category
	Scan(text string) iter.Seq[Span]
}

// RegexMatcher is a Matcher backed by a compiled regular expression.
type RegexMatcher struct {
	category Category
	pattern  *regexp.Regexp
}

// NewRegexMatcher compiles pattern. It returns an error for invalid expressions.
func NewRegexMatcher(category Category, pattern string) (*RegexMatcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexMatcher{category: category, pattern: re}, nil
}

func mustRegexMatcher(category Category, pattern string) *RegexMatcher {
	return &RegexMatcher{category: category, pattern: regexp.MustCompile(pattern)}
}

// Category implements Matcher.
func (m *RegexMatcher) Category() Category {
	return m.category
}

// Scan implements Matcher. Matching is resumed from the previous match end on every
// iteration step so early termination does no extra work.
func (m *RegexMatcher) Scan(text string) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		offset := 0
		for offset <= len(text) {
			loc := m.pattern.FindStringIndex(text[offset:])
			if loc == nil {
				return
			}
			start, end := offset+loc[0], offset+loc[1]
			if !yield(Span{Category: m.category, Value: text[start:end], Start: start, End: end}) {
				return
			}
			if end == start {
				end++
			}
			offset = end
		}
	}
}

const (
	emailPattern = `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`
	// International form: "+", a country code, then grouped digits.
	phoneIntlPattern = `\+\d{1,3}(?:[-.\s]?\(?\d{2,4}\)?){2,4}`
	// NANP with an optional leading trunk 1.
	phoneNANPPattern = `(?:\b1[-.\s]?)?(?:\(\d{3}\)|\b\d{3})[-.\s]?\d{3}[-.\s]?\d{4}\b`
	// Ten or more digits joined by at most one dash or dot. Years and short counters
	// stay unclassified.
	phoneRunPattern = `\b\d(?:[-.]?\d){9,}\b`
	phonePattern    = phoneIntlPattern + `|` + phoneNANPPattern + `|` + phoneRunPattern
	ssnPattern      = `\b\d{3}-\d{2}-\d{4}\b`
	cardPattern     = `\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`
	ipv4Pattern     = `\b(?:\d{1,3}\.){3}\d{1,3}\b`
)

// DefaultMatchers returns the built-in matchers in detection order.
func DefaultMatchers() []Matcher {
	return []Matcher{
		mustRegexMatcher(CategoryEmail, emailPattern),
		mustRegexMatcher(CategoryPhone, phonePattern),
		mustRegexMatcher(CategorySSN, ssnPattern),
		mustRegexMatcher(CategoryCreditCard, cardPattern),
		mustRegexMatcher(CategoryIPAddress, ipv4Pattern),
	}
}

// Classifier runs a fixed, ordered list of matchers. It is immutable and safe for
// concurrent use.
type Classifier struct {
	matchers []Matcher
}

var defaultClassifier = New(DefaultMatchers()...)

// Default returns the shared classifier built from DefaultMatchers.
func Default() *Classifier {
	return defaultClassifier
}

// New builds a classifier. Nil matchers are skipped.
func New(matchers ...Matcher) *Classifier {
	c := &Classifier{matchers: make([]Matcher, 0, len(matchers))}
	for _, m := range matchers {
		if m != nil {
			c.matchers = append(c.matchers, m)
		}
	}
	return c
}

// With returns a copy of c with m appended. c is not modified.
func (c *Classifier) With(m Matcher) *Classifier {
	next := slices.Clone(c.matchers)
	if m != nil {
		next = append(next, m)
	}
	return &Classifier{matchers: next}
}

// Categories lists the categories in detection order.
func (c *Classifier) Categories() []Category {
	out := make([]Category, 0, len(c.matchers))
	for _, m := range c.matchers {
		out = append(out, m.Category())
	}
	return out
}

// Detect returns every span found in text. Matchers are invoked only as the sequence is
// consumed, and ranging over the result again rescans from the start.
func (c *Classifier) Detect(text string) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for _, m := range c.matchers {
			for span := range m.Scan(text) {
				if !yield(span) {
					return
				}
			}
		}
	}
}

// DetectAll collects Detect into a slice.
func (c *Classifier) DetectAll(text string) []Span {
	return slices.Collect(c.Detect(text))
}

// Detect runs the default classifier.
func Detect(text string) iter.Seq[Span] {
	return defaultClassifier.Detect(text)
}

// Contains reports whether text holds at least one detectable value.
func (c *Classifier) Contains(text string) bool {
	for range c.Detect(text) {
		return true
	}
	return false
}
