// Package decoder turns raw platform response bodies into candidate
// listings. One decoder per platform route; all of them are stateless
// functions of (body, keyword) and tolerate partially broken items.
package decoder

import (
	"strings"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

// Decoder extracts candidate listings from one platform's response body.
// Implementations must skip the operator's own storefront, substitute empty
// strings for missing optional fields, and never let one malformed item
// abort the remainder of the response.
type Decoder interface {
	// Name identifies the decoder in logs and the route table.
	Name() string

	// Platform returns the 平台 column value for rows this decoder produces.
	Platform() string

	// SkipsMatcher reports that this decoder's pages are already scoped
	// to one product, so its candidates carry no raw title and the
	// keyword filter does not apply to them.
	SkipsMatcher() bool

	// Decode parses the raw response body. A body with no listings is a
	// nil slice, not an error.
	Decode(body []byte, kw model.Keyword) ([]model.Candidate, error)
}

// ensureScheme completes protocol-relative URLs the platforms emit
// ("//img10.360buyimg.com/..." and friends).
func ensureScheme(u string) string {
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

// firstLine cuts a scraped title at the first newline; JD titles carry
// promotional text after the break.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
