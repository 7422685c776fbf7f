package mask

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Placeholders returned when a value is too short or malformed to partially reveal.
const (
	EmailPlaceholder   = "***@***.***"
	PhonePlaceholder   = "***-***-****"
	CardPlaceholder    = "****-****-****-****"
	SSNPlaceholder     = "***-**-****"
	AddressPlaceholder = "***"
	IPPlaceholder      = "***.***.***.***"

	stars = "***"
)

var (
	maskedPhone = regexp.MustCompile(`^\*{3}-\*{3}-(?:\d{4}|\*{4})$`)
	maskedSSN   = regexp.MustCompile(`^\*{3}-\*{2}-(?:\d{4}|\*{4})$`)
)

// Email keeps the first two characters of the local part and the whole domain.
func Email(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" {
		return EmailPlaceholder
	}
	return keepPrefix(local, 2) + stars + "@" + domain
}

// Phone reveals the last four digits of numbers with at least ten digits.
func Phone(phone string) string {
	if maskedPhone.MatchString(phone) {
		return phone
	}
	digits := onlyDigits(phone)
	if len(digits) < 10 {
		return PhonePlaceholder
	}
	return "***-***-" + digits[len(digits)-4:]
}

// CreditCard reveals the last four characters once whitespace is removed.
func CreditCard(card string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, card)
	if len(cleaned) < 12 {
		return CardPlaceholder
	}
	return "****-****-****-" + cleaned[len(cleaned)-4:]
}

// SSN reveals the last four digits of a nine digit number.
func SSN(ssn string) string {
	if maskedSSN.MatchString(ssn) {
		return ssn
	}
	digits := onlyDigits(ssn)
	if len(digits) != 9 {
		return SSNPlaceholder
	}
	return "***-**-" + digits[5:]
}

// Address masks the street segment and keeps the remaining comma separated segments.
// Addresses without a comma are replaced entirely.
func Address(address string) string {
	street, rest, ok := strings.Cut(address, ",")
	if !ok {
		return AddressPlaceholder
	}
	return keepPrefix(street, 3) + stars + "," + rest
}

// Name keeps the first character of every space separated token.
func Name(name string) string {
	parts := strings.Split(name, " ")
	for i, part := range parts {
		first, size := utf8.DecodeRuneInString(part)
		if size == 0 {
			continue
		}
		parts[i] = string(first) + strings.Repeat("*", utf8.RuneCountInString(part)-1)
	}
	return strings.Join(parts, " ")
}

// keepPrefix returns up to n leading runes of s, dropping trailing mask characters so
// masked input maps to itself.
func keepPrefix(s string, n int) string {
	end := 0
	for i := 0; i < n && end < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return strings.TrimRight(s[:end], "*")
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
