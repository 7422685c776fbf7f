package pii

import (
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCategories(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category Category
		value    string
	}{
		{"email", "mail jane.doe@example.com now", CategoryEmail, "jane.doe@example.com"},
		{"phone dashed", "call 555-123-4567 today", CategoryPhone, "555-123-4567"},
		{"phone parens", "call (555) 123-4567", CategoryPhone, "(555) 123-4567"},
		{"phone country code", "call +1 555.123.4567", CategoryPhone, "+1 555.123.4567"},
		{"phone trunk prefix", "call 15551234567 now", CategoryPhone, "15551234567"},
		{"phone trunk dashed", "call 1-555-123-4567 now", CategoryPhone, "1-555-123-4567"},
		{"phone international", "call +44 20 7946 0958 now", CategoryPhone, "+44 20 7946 0958"},
		{"phone long run", "acct 5551234567890 x", CategoryPhone, "5551234567890"},
		{"ssn", "ssn 123-45-6789", CategorySSN, "123-45-6789"},
		{"card spaced", "card 4111 1111 1111 1111 ok", CategoryCreditCard, "4111 1111 1111 1111"},
		{"card packed", "card 4111111111111111", CategoryCreditCard, "4111111111111111"},
		{"ip", "from 192.168.10.1 port", CategoryIPAddress, "192.168.10.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var found []Span
			for span := range Detect(tt.text) {
				if span.Category == tt.category {
					found = append(found, span)
				}
			}
			require.Len(t, found, 1)
			assert.Equal(t, tt.value, found[0].Value)
			assert.Equal(t, tt.value, tt.text[found[0].Start:found[0].End])
		})
	}
}

func TestDetectIgnoresShortDigitRuns(t *testing.T) {
	spans := Default().DetectAll("Order 2024 shipped in 3 boxes, ref 12345")
	assert.Empty(t, spans)
}

func TestDetectOrderIsCategoryBlocksThenLeftToRight(t *testing.T) {
	text := "b@x.io 555-123-4567 a@y.io 10.0.0.1"
	spans := Default().DetectAll(text)

	var cats []Category
	for _, s := range spans {
		cats = append(cats, s.Category)
	}
	assert.Equal(t, []Category{CategoryEmail, CategoryEmail, CategoryPhone, CategoryIPAddress}, cats)
	assert.Less(t, spans[0].Start, spans[1].Start)
}

func TestDetectReportsOverlaps(t *testing.T) {
	text := "write to 5551234567@example.com"
	spans := Default().DetectAll(text)

	require.Len(t, spans, 2)
	assert.Equal(t, CategoryEmail, spans[0].Category)
	assert.Equal(t, CategoryPhone, spans[1].Category)
	assert.Equal(t, "5551234567", spans[1].Value)
	assert.True(t, spans[1].Start >= spans[0].Start && spans[1].End <= spans[0].End)
}

func TestDetectIsRestartableAndLazy(t *testing.T) {
	text := "a@b.com 555-123-4567 c@d.com"
	seq := Detect(text)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)

	next, stop := iter.Pull(seq)
	defer stop()
	span, ok := next()
	require.True(t, ok)
	assert.Equal(t, "a@b.com", span.Value)
}

type countingMatcher struct {
	calls int
}

func (m *countingMatcher) Category() Category { return "custom" }

func (m *countingMatcher) Scan(string) iter.Seq[Span] {
	m.calls++
	return func(func(Span) bool) {}
}

func TestDetectStopsEarly(t *testing.T) {
	counter := &countingMatcher{}
	c := Default().With(counter)

	for range c.Detect("a@b.com") {
		break
	}
	assert.Zero(t, counter.calls)

	assert.Len(t, c.DetectAll("a@b.com"), 1)
	assert.Equal(t, 1, counter.calls)
}

func TestWithDoesNotModifyReceiver(t *testing.T) {
	order, err := NewRegexMatcher("order_id", `\bORD-\d{6}\b`)
	require.NoError(t, err)

	base := Default()
	extended := base.With(order)

	assert.Len(t, base.Categories(), 5)
	assert.Equal(t, Category("order_id"), extended.Categories()[5])

	spans := extended.DetectAll("ref ORD-123456")
	require.Len(t, spans, 1)
	assert.Equal(t, "ORD-123456", spans[0].Value)
	assert.False(t, base.Contains("ref ORD-123456"))
}

func TestNewRegexMatcherRejectsBadPattern(t *testing.T) {
	_, err := NewRegexMatcher("bad", `(`)
	require.Error(t, err)
}
