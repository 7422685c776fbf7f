package privacy

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSensitiveField(t *testing.T) {
	for _, name := range []string{"password", "userPassword", "API_KEY", "refreshToken", "Authorization", "card_CVV", "set-cookie"} {
		assert.True(t, IsSensitiveField(name), name)
	}
	for _, name := range []string{"email", "name", "orderId", "createdAt"} {
		assert.False(t, IsSensitiveField(name), name)
	}
}

func TestSanitizeForLogNested(t *testing.T) {
	in := map[string]any{
		"message":  "user jane@example.com logged in from 10.0.0.1",
		"password": "hunter2",
		"nested": map[string]any{
			"apiKey": map[string]any{"value": "k"},
			"items":  []any{"call 555-123-4567", 42, true, nil},
		},
		"count": 3,
	}

	out, ok := SanitizeForLog(in).(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "user ja***@example.com logged in from ***.***.***.***", out["message"])
	assert.Equal(t, Redacted, out["password"])
	assert.Equal(t, 3, out["count"])

	nested := out["nested"].(map[string]any)
	assert.Equal(t, Redacted, nested["apiKey"])
	assert.Equal(t, []any{"call ***-***-4567", 42, true, nil}, nested["items"])

	assert.Equal(t, "hunter2", in["password"], "input must not be mutated")
	assert.Equal(t, "call 555-123-4567", in["nested"].(map[string]any)["items"].([]any)[0])
}

func TestSanitizeForLogCycles(t *testing.T) {
	m := map[string]any{"name": "loop"}
	m["self"] = m

	out := SanitizeForLog(m).(map[string]any)
	assert.Equal(t, Circular, out["self"])

	list := []any{"a", nil}
	list[1] = list
	assert.Equal(t, []any{"a", Circular}, SanitizeForLog(list))

	type node struct {
		Name string `json:"name"`
		Next *node  `json:"next"`
	}
	n := &node{Name: "n"}
	n.Next = n
	assert.Equal(t, map[string]any{"name": "n", "next": Circular}, SanitizeForLog(n))
}

func TestSanitizeForLogSharedReferenceIsNotCircular(t *testing.T) {
	shared := map[string]any{"k": "v"}
	out := SanitizeForLog(map[string]any{"a": shared, "b": shared}).(map[string]any)

	assert.Equal(t, map[string]any{"k": "v"}, out["a"])
	assert.Equal(t, map[string]any{"k": "v"}, out["b"])
}

type loginEvent struct {
	User      string    `json:"user"`
	Password  string    `json:"password"`
	Session   string    `json:"-"`
	IP        string    `json:"ip,omitempty"`
	At        time.Time `json:"at"`
	Attempts  int
	internal  string
	Referrers []string `json:"referrers"`
}

func TestSanitizeForLogStructs(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	ev := loginEvent{
		User:      "jane@example.com",
		Password:  "hunter2",
		Session:   "s",
		IP:        "192.168.1.1",
		At:        at,
		Attempts:  2,
		internal:  "x",
		Referrers: []string{"a@b.com"},
	}

	out := SanitizeForLog(ev)
	assert.Equal(t, map[string]any{
		"user":      "ja***@example.com",
		"password":  Redacted,
		"ip":        "***.***.***.***",
		"at":        at,
		"Attempts":  2,
		"referrers": []any{"a***@b.com"},
	}, out)
}

func TestSanitizeForLogErrorsAndScalars(t *testing.T) {
	err := fmt.Errorf("lookup %s: %w", "jane@example.com", errors.New("not found"))
	assert.Equal(t, "lookup ja***@example.com: not found", SanitizeForLog(err))

	assert.Nil(t, SanitizeForLog(nil))
	assert.Equal(t, 1.5, SanitizeForLog(1.5))
	assert.Equal(t, "ja***@example.com", SanitizeForLog([]byte("jane@example.com")))
	assert.Equal(t, map[string]any{"1": "x"}, SanitizeForLog(map[int]string{1: "x"}))

	var nilMap map[string]any
	assert.Nil(t, SanitizeForLog(nilMap))
}
