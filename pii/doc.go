// Package pii finds personally identifiable substrings in free text.
//
// A [Classifier] is an ordered set of [Matcher] values, one per [Category]. Detection
// returns a lazy sequence of [Span] values in category-block order, then left to right
// within a category. Spans from different categories may overlap; they are reported as
// found and never merged. Resolving overlaps is the job of the masking layer.
package pii
