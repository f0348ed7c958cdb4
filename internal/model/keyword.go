package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// brandExactMatch is a legacy brand whose match rule bypasses the normal
// brand-OR logic: when it is among the aliases, a listing matches iff the
// alias itself appears in the title.
const brandExactMatch = "一口"

// Keyword is an operator-supplied search string: zero or more brand aliases
// followed by the canonical product name, space-delimited.
type Keyword struct {
	raw     string
	brands  []string
	product string
}

// ParseKeyword splits a search string into brand aliases and product name.
// The last token is the product; everything before it is a brand alias.
func ParseKeyword(s string) (Keyword, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return Keyword{}, eris.Errorf("keyword: empty search string %q", s)
	}
	return Keyword{
		raw:     strings.Join(tokens, " "),
		brands:  tokens[:len(tokens)-1],
		product: tokens[len(tokens)-1],
	}, nil
}

// Raw returns the normalized keyword string. This is what gets written to
// the 药品名 column.
func (k Keyword) Raw() string { return k.raw }

// Brands returns the brand aliases.
func (k Keyword) Brands() []string { return k.brands }

// Product returns the canonical product name.
func (k Keyword) Product() string { return k.product }

// productKey is a 3-character prefix of the product name, tolerating the
// suffix variation platforms add (颗粒, 胶囊, ...). Products of one or two
// characters are used whole.
func (k Keyword) productKey() string {
	runes := []rune(k.product)
	if len(runes) > 2 {
		return string(runes[:3])
	}
	return k.product
}

// Matches reports whether a listing title belongs to this keyword.
//
// The product key must always be present. If the 一口 alias is configured,
// its presence alone decides the brand check. Otherwise any one brand alias
// in the title is enough; with no aliases configured nothing passes.
// (Earlier revisions required every alias to be present; any-match is the
// behavior kept here.)
func (k Keyword) Matches(title string) bool {
	if !strings.Contains(title, k.productKey()) {
		return false
	}

	for _, b := range k.brands {
		if b == brandExactMatch {
			return strings.Contains(title, brandExactMatch)
		}
	}

	for _, b := range k.brands {
		if strings.Contains(title, b) {
			return true
		}
	}
	return false
}
