package entity

import (
	"strings"
	"unicode"
)

// UserSearchDocument is the denormalized copy of a user kept in the search
// index. ID always equals the user's record ID.
type UserSearchDocument struct {
	ID          string `json:"user_id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

func NewUserSearchDocument(u *User) UserSearchDocument {
	return UserSearchDocument{
		ID:          u.ID,
		Name:        u.FullName(),
		PhoneNumber: StringValue(u.PhoneNumber),
		Email:       StringValue(u.Email),
	}
}

// Tokens returns the lowercase terms a search matches against: each word of
// the name, the full email and its local part, and the phone number.
func (d UserSearchDocument) Tokens() []string {
	seen := make(map[string]struct{})
	var tokens []string
	add := func(t string) {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		tokens = append(tokens, t)
	}

	for _, word := range strings.FieldsFunc(d.Name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-'
	}) {
		add(word)
	}
	if d.Email != "" {
		add(d.Email)
		if at := strings.IndexByte(d.Email, '@'); at > 0 {
			add(d.Email[:at])
		}
	}
	add(d.PhoneNumber)

	return tokens
}

// NormalizeSearchTerm maps user input onto the token space of Tokens.
func NormalizeSearchTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
