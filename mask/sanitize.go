package mask

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/MrEthical07/goShield/pii"
)

// Func masks one detected value.
type Func func(string) string

// Sanitizer redacts free text using a classifier and one masker per category.
// Sanitizer values are immutable and safe for concurrent use.
type Sanitizer struct {
	classifier *pii.Classifier
	maskers    map[pii.Category]Func
	priority   map[pii.Category]int
}

// builtinPriority orders categories when detected spans overlap. Lower wins.
var builtinPriority = []pii.Category{
	pii.CategoryEmail,
	pii.CategorySSN,
	pii.CategoryCreditCard,
	pii.CategoryIPAddress,
	pii.CategoryPhone,
}

func fixed(s string) Func {
	return func(string) string { return s }
}

func defaultMaskers() map[pii.Category]Func {
	return map[pii.Category]Func{
		pii.CategoryEmail:      Email,
		pii.CategoryPhone:      Phone,
		pii.CategorySSN:        fixed(SSNPlaceholder),
		pii.CategoryCreditCard: CreditCard,
		pii.CategoryIPAddress:  fixed(IPPlaceholder),
		pii.CategoryAddress:    Address,
		pii.CategoryName:       Name,
	}
}

// NewSanitizer builds a sanitizer over c. A nil classifier means pii.Default().
// Categories without a registered masker are replaced with "***".
func NewSanitizer(c *pii.Classifier) *Sanitizer {
	if c == nil {
		c = pii.Default()
	}
	s := &Sanitizer{
		classifier: c,
		maskers:    defaultMaskers(),
		priority:   make(map[pii.Category]int),
	}
	for i, cat := range builtinPriority {
		s.priority[cat] = i
	}
	for _, cat := range c.Categories() {
		if _, ok := s.priority[cat]; !ok {
			s.priority[cat] = len(s.priority)
		}
	}
	return s
}

// WithMasker returns a copy of s using fn for category.
func (s *Sanitizer) WithMasker(category pii.Category, fn Func) *Sanitizer {
	next := &Sanitizer{
		classifier: s.classifier,
		maskers:    maps.Clone(s.maskers),
		priority:   s.priority,
	}
	next.maskers[category] = fn
	return next
}

// Text replaces every detected value in text. When spans overlap, the span with the
// higher priority category wins, then the longer span. The input is scanned once and
// each surviving span is substituted exactly once.
func (s *Sanitizer) Text(text string) string {
	spans := slices.Collect(s.classifier.Detect(text))
	if len(spans) == 0 {
		return text
	}

	slices.SortStableFunc(spans, func(a, b pii.Span) int {
		return cmp.Or(
			cmp.Compare(s.rank(a.Category), s.rank(b.Category)),
			cmp.Compare(b.End-b.Start, a.End-a.Start),
			cmp.Compare(a.Start, b.Start),
		)
	})

	chosen := spans[:0:0]
	for _, span := range spans {
		if !overlapsAny(chosen, span) {
			chosen = append(chosen, span)
		}
	}
	slices.SortFunc(chosen, func(a, b pii.Span) int { return cmp.Compare(a.Start, b.Start) })

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, span := range chosen {
		b.WriteString(text[last:span.Start])
		b.WriteString(s.mask(span))
		last = span.End
	}
	b.WriteString(text[last:])
	return b.String()
}

func (s *Sanitizer) rank(c pii.Category) int {
	if r, ok := s.priority[c]; ok {
		return r
	}
	return len(s.priority)
}

func (s *Sanitizer) mask(span pii.Span) string {
	if fn, ok := s.maskers[span.Category]; ok && fn != nil {
		return fn(span.Value)
	}
	return stars
}

func overlapsAny(chosen []pii.Span, span pii.Span) bool {
	for _, c := range chosen {
		if span.Start < c.End && c.Start < span.End {
			return true
		}
	}
	return false
}

var defaultSanitizer = NewSanitizer(nil)

// SanitizeText redacts text with the default classifier and maskers.
func SanitizeText(text string) string {
	return defaultSanitizer.Text(text)
}

// Default returns the shared sanitizer used by SanitizeText.
func Default() *Sanitizer {
	return defaultSanitizer
}
