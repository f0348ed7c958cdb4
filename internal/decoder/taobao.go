package decoder

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"golang.org/x/text/width"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

var (
	jsonpPrefixRe = regexp.MustCompile(`^\s*mtopjsonp\d+\(`)
	hanRunRe      = regexp.MustCompile(`\p{Han}+`)
)

// Taobao decodes the Taobao/Tmall H5 search recommend endpoint, a
// JSONP-wrapped payload (mtopjsonpNN({...})).
type Taobao struct{}

func (Taobao) Name() string       { return "taobao" }
func (Taobao) Platform() string   { return model.PlatformTaobao }
func (Taobao) SkipsMatcher() bool { return false }

func (d Taobao) Decode(body []byte, kw model.Keyword) ([]model.Candidate, error) {
	payload, err := stripJSONP(string(body))
	if err != nil {
		return nil, err
	}

	var out []model.Candidate
	for _, item := range gjson.Get(payload, "data.itemsArray").Array() {
		storeName := item.Get("shopInfo.title").String()
		if storeName == "" || storeName == model.OwnStoreName {
			continue
		}

		out = append(out, model.Candidate{
			StoreName: storeName,
			StoreURL:  ensureScheme(item.Get("shopInfo.url").String()),
			RawName:   cjkRuns(item.Get("title").String()),
			Image:     ensureScheme(item.Get("pic_path").String()),
			Price:     item.Get("priceShow.price").String(),
			Platform:  model.PlatformTaobao,
		})
	}
	return out, nil
}

// stripJSONP removes the mtopjsonpNN( callback prefix and the trailing
// parenthesis, leaving the JSON payload.
func stripJSONP(s string) (string, error) {
	loc := jsonpPrefixRe.FindStringIndex(s)
	if loc == nil {
		return "", eris.New("taobao: missing jsonp callback prefix")
	}
	s = s[loc[1]:]

	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, ")") {
		return "", eris.New("taobao: unterminated jsonp payload")
	}
	s = s[:len(s)-1]

	if !gjson.Valid(s) {
		return "", eris.New("taobao: jsonp payload is not valid JSON")
	}
	return s, nil
}

// cjkRuns reduces a listing title to its contiguous CJK runs. Taobao titles
// interleave the medicine name with latin SKU codes, counts, and promo
// punctuation; none of that survives. Full-width variants are folded first
// so they are dropped with their ASCII equivalents.
func cjkRuns(title string) string {
	folded := width.Fold.String(title)
	return strings.Join(hanRunRe.FindAllString(folded, -1), "")
}
