package privacy

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/goShield/cryptox"
	"github.com/MrEthical07/goShield/pii"
)

var uuidShape = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestAnonymize(t *testing.T) {
	in := Record{
		"id":        "u1",
		"userId":    "u1",
		"email":     "a@b.com",
		"phone":     "555-123-4567",
		"name":      "Jane Doe",
		"address":   "1 Main St, Town",
		"createdAt": "2024-03-05T14:22:00Z",
		"plan":      "gold",
	}

	res := Anonymize(in)
	out := res.Record

	id, ok := out["id"].(string)
	require.True(t, ok)
	assert.NotEqual(t, "u1", id)
	assert.Regexp(t, uuidShape, id)

	assert.NotContains(t, out, "userId")
	assert.NotContains(t, out, "name")
	assert.NotContains(t, out, "address")
	assert.Equal(t, "a***@b.com", out["email"])
	assert.Equal(t, "***-***-4567", out["phone"])
	assert.Equal(t, "2024-03-05T00:00:00.000Z", out["createdAt"])
	assert.Equal(t, "gold", out["plan"])

	assert.Equal(t, ProtectedField{Category: pii.CategoryEmail, Masked: true}, res.Fields["email"])
	assert.Equal(t, ProtectedField{Category: pii.CategoryPhone, Masked: true}, res.Fields["phone"])

	assert.Equal(t, "u1", in["id"], "input must not be mutated")
	assert.Equal(t, "Jane Doe", in["name"])
}

func TestAnonymizeFreshIDs(t *testing.T) {
	in := Record{"id": "u1"}
	assert.NotEqual(t, Anonymize(in).Record["id"], Anonymize(in).Record["id"])
}

func TestAnonymizeCreatedAtVariants(t *testing.T) {
	offset := time.FixedZone("plus9", 9*3600)

	tests := []struct {
		name    string
		value   any
		want    string
		removed bool
	}{
		{"time value", time.Date(2024, 3, 5, 23, 59, 59, 0, time.UTC), "2024-03-05T00:00:00.000Z", false},
		{"offset string", "2024-03-06T02:00:00+09:00", "2024-03-05T00:00:00.000Z", false},
		{"offset time", time.Date(2024, 3, 6, 2, 0, 0, 0, offset), "2024-03-05T00:00:00.000Z", false},
		{"fractional", "2024-03-05T14:22:00.123456Z", "2024-03-05T00:00:00.000Z", false},
		{"garbage", "yesterday", "", true},
		{"number", 12345, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Anonymize(Record{"createdAt": tt.value}).Record
			if tt.removed {
				assert.NotContains(t, out, "createdAt")
				return
			}
			assert.Equal(t, tt.want, out["createdAt"])
		})
	}
}

func newTestPseudonymizer(t *testing.T) *Pseudonymizer {
	t.Helper()
	c, err := cryptox.NewCipher(bytes.Repeat([]byte{7}, cryptox.KeySize))
	require.NoError(t, err)
	p, err := NewPseudonymizer([]byte("pseudonym-secret"), c)
	require.NoError(t, err)
	return p
}

func TestPseudonymizeStableAcrossRecords(t *testing.T) {
	p := newTestPseudonymizer(t)

	first, err := p.Pseudonymize(Record{"id": "o1", "userId": "u1", "email": "a@b.com"}, "u1")
	require.NoError(t, err)
	second, err := p.Pseudonymize(Record{"id": "o2", "phone": "555-123-4567"}, "u1")
	require.NoError(t, err)
	other, err := p.Pseudonymize(Record{"id": "o3"}, "u2")
	require.NoError(t, err)

	assert.Equal(t, first.Record["pseudoId"], second.Record["pseudoId"])
	assert.NotEqual(t, first.Record["pseudoId"], other.Record["pseudoId"])
	assert.Len(t, first.Record["pseudoId"], 64)

	assert.NotContains(t, first.Record, "id")
	assert.NotContains(t, first.Record, "userId")
}

func TestPseudonymizeEncryptsAndReveals(t *testing.T) {
	p := newTestPseudonymizer(t)

	res, err := p.Pseudonymize(Record{"email": "a@b.com", "phone": "555-123-4567", "note": "hi"}, "u1")
	require.NoError(t, err)

	assert.NotEqual(t, "a@b.com", res.Record["email"])
	assert.Equal(t, "hi", res.Record["note"])
	assert.Equal(t, ProtectedField{Category: pii.CategoryEmail, Encrypted: true}, res.Fields["email"])
	assert.True(t, res.Fields["phone"].Encrypted)

	email, err := p.Reveal(res.Record, "email")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)

	phone, err := p.Reveal(res.Record, "phone")
	require.NoError(t, err)
	assert.Equal(t, "555-123-4567", phone)

	_, err = p.Reveal(res.Record, "missing")
	require.ErrorIs(t, err, ErrFieldMissing)

	_, err = p.Reveal(Record{"email": "00:00"}, "email")
	require.ErrorIs(t, err, cryptox.ErrDecryptionFailed)
}

func TestRevealRequiresTheKey(t *testing.T) {
	p := newTestPseudonymizer(t)
	res, err := p.Pseudonymize(Record{"email": "a@b.com"}, "u1")
	require.NoError(t, err)

	otherCipher, err := cryptox.NewCipher(bytes.Repeat([]byte{9}, cryptox.KeySize))
	require.NoError(t, err)
	other, err := NewPseudonymizer([]byte("pseudonym-secret"), otherCipher)
	require.NoError(t, err)

	_, err = other.Reveal(res.Record, "email")
	require.ErrorIs(t, err, cryptox.ErrDecryptionFailed)
}

func TestNewPseudonymizerValidates(t *testing.T) {
	c, err := cryptox.NewCipher(bytes.Repeat([]byte{1}, cryptox.KeySize))
	require.NoError(t, err)

	_, err = NewPseudonymizer(nil, c)
	require.Error(t, err)
	_, err = NewPseudonymizer([]byte("s"), nil)
	require.Error(t, err)
}
