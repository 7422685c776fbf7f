package privacy

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goShield/mask"
	"github.com/MrEthical07/goShield/pii"
)

// Record is a structured record keyed by field name.
type Record map[string]any

// Field names the transforms act on.
const (
	FieldID        = "id"
	FieldUserID    = "userId"
	FieldUserIDAlt = "user_id"
	FieldPseudoID  = "pseudoId"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldName      = "name"
	FieldAddress   = "address"
	FieldCreatedAt = "createdAt"
)

const dayLayout = "2006-01-02T15:04:05.000Z"

// ErrFieldMissing is returned by Reveal when the field is absent or not a string.
var ErrFieldMissing = errors.New("privacy: field missing")

// ProtectedField describes how a field of a transformed record was treated.
type ProtectedField struct {
	Category  pii.Category
	Encrypted bool
	Masked    bool
}

// Result is a transformed record plus the treatment applied to each protected field.
type Result struct {
	Record Record
	Fields map[string]ProtectedField
}

func newResult(rec Record) Result {
	out := maps.Clone(rec)
	if out == nil {
		out = Record{}
	}
	return Result{Record: out, Fields: make(map[string]ProtectedField)}
}

// Anonymize replaces the identifier with a random one, masks email and phone, removes
// name and address and truncates createdAt to the UTC day. A createdAt value that cannot
// be parsed is removed.
func Anonymize(rec Record) Result {
	res := newResult(rec)
	r := res.Record

	r[FieldID] = uuid.NewString()
	delete(r, FieldUserID)
	delete(r, FieldUserIDAlt)

	if v, ok := present(r, FieldEmail); ok {
		r[FieldEmail] = mask.Email(v)
		res.Fields[FieldEmail] = ProtectedField{Category: pii.CategoryEmail, Masked: true}
	}
	if v, ok := present(r, FieldPhone); ok {
		r[FieldPhone] = mask.Phone(v)
		res.Fields[FieldPhone] = ProtectedField{Category: pii.CategoryPhone, Masked: true}
	}
	delete(r, FieldName)
	delete(r, FieldAddress)

	if raw, ok := r[FieldCreatedAt]; ok && raw != nil {
		if day, ok := truncateDay(raw); ok {
			r[FieldCreatedAt] = day
		} else {
			delete(r, FieldCreatedAt)
		}
	}

	return res
}

func truncateDay(v any) (string, bool) {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return "", false
		}
		t = *x
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return "", false
		}
		t = parsed
	default:
		return "", false
	}
	return t.UTC().Truncate(24 * time.Hour).Format(dayLayout), true
}

// present returns the field rendered as a string when it is set and non-empty.
func present(r Record, field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	s, isString := v.(string)
	if !isString {
		s = fmt.Sprint(v)
	}
	if s == "" {
		return "", false
	}
	return s, true
}
