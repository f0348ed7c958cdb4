package decoder

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

// Yaofangwang decodes a yaofangwang.com medicine listing page. The page is
// already scoped to one medicine, so candidates carry no raw title (the
// matcher is skipped) and the storefront name doubles as the qualification
// name, which the site displays directly.
type Yaofangwang struct{}

func (Yaofangwang) Name() string       { return "yaofangwang" }
func (Yaofangwang) Platform() string   { return model.PlatformYaofangwang }
func (Yaofangwang) SkipsMatcher() bool { return true }

func (d Yaofangwang) Decode(body []byte, kw model.Keyword) ([]model.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "yaofangwang: parse listing page")
	}

	var out []model.Candidate
	doc.Find("#slist ul li").Each(func(_ int, li *goquery.Selection) {
		link := li.Find("div.clearfix a").First()

		storeName := link.AttrOr("title", "")
		if storeName == "" || storeName == model.OwnStoreName {
			return
		}

		out = append(out, model.Candidate{
			StoreName:     storeName,
			StoreURL:      ensureScheme(link.AttrOr("href", "")),
			Image:         ensureScheme(li.Find("div.img a img").AttrOr("src", "")),
			Price:         link.AttrOr("data-commodity_price", ""),
			Platform:      model.PlatformYaofangwang,
			Qualification: storeName,
		})
	})

	return out, nil
}
