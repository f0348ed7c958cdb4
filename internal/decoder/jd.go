package decoder

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

// JDSearch decodes the JD desktop search results page
// (https://search.jd.com/Search). The first thirty listings are inlined in
// the page HTML under #J_goodsList.
type JDSearch struct{}

func (JDSearch) Name() string       { return "jd_search" }
func (JDSearch) Platform() string   { return model.PlatformJD }
func (JDSearch) SkipsMatcher() bool { return false }

func (d JDSearch) Decode(body []byte, kw model.Keyword) ([]model.Candidate, error) {
	doc, err := htmlquery.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, eris.Wrap(err, "jd: parse search page")
	}

	items, err := htmlquery.QueryAll(doc, `//div[@id="J_goodsList"]//li`)
	if err != nil {
		return nil, eris.Wrap(err, "jd: query goods list")
	}

	return decodeJDItems(items, d.Name()), nil
}

// JDPaged decodes the lazily loaded second half of a JD results page
// (api.m.jd.com pc_search_s_new). The response is an HTML fragment followed
// by inline scripts; only the <li> region between the first listing and the
// first <script> is parseable product markup.
type JDPaged struct{}

func (JDPaged) Name() string       { return "jd_paged" }
func (JDPaged) Platform() string   { return model.PlatformJD }
func (JDPaged) SkipsMatcher() bool { return false }

func (d JDPaged) Decode(body []byte, kw model.Keyword) ([]model.Candidate, error) {
	fragment := sliceBetween(string(body), `<li data-sku=`, `<script>`)
	if fragment == "" {
		return nil, nil
	}

	doc, err := htmlquery.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, eris.Wrap(err, "jd: parse paged fragment")
	}

	items, err := htmlquery.QueryAll(doc, `//li`)
	if err != nil {
		return nil, eris.Wrap(err, "jd: query paged items")
	}

	return decodeJDItems(items, d.Name()), nil
}

// sliceBetween returns the substring starting at the first occurrence of
// start and ending before the first occurrence of end after it. Either
// marker missing yields "".
func sliceBetween(s, start, end string) string {
	i := strings.Index(s, start)
	if i < 0 {
		return ""
	}
	s = s[i:]
	if j := strings.Index(s, end); j >= 0 {
		s = s[:j]
	}
	return s
}

// decodeJDItems extracts candidates from search-result <li> nodes. Both the
// inline page and the paged fragment share the same item structure, modulo
// a few class-vs-position differences covered by the fallback expressions.
func decodeJDItems(items []*html.Node, tag string) []model.Candidate {
	log := zap.L().With(zap.String("component", "decoder."+tag))

	var out []model.Candidate
	for _, li := range items {
		title := firstLine(strings.TrimSpace(innerText(li, `./div/div[3]/a/em`, `./div/div[3]//em`)))

		price := innerText(li, `./div/div[2]/strong/i`, `.//div/div[2]/strong/i`)
		if price == "" {
			log.Debug("item without price, skipping")
			continue
		}

		storeName := attrOf(li, "title", `./div[1]/div[@class="p-shop"]/span/a`, `.//div[@class="p-shop"]/span/a`)
		if storeName == "" || storeName == model.OwnStoreName {
			continue
		}

		storeURL := attrOf(li, "href", `./div/div[5]/span/a`, `.//div/div[5]/span/a`)
		img := attrOf(li, "data-lazy-img", `./div[1]/div[@class="p-img"]//img`, `./div[1]//img`)

		out = append(out, model.Candidate{
			StoreName: storeName,
			StoreURL:  ensureScheme(storeURL),
			RawName:   title,
			Image:     ensureScheme(img),
			Price:     price,
			Platform:  model.PlatformJD,
		})
	}
	return out
}

// innerText returns the text of the first expression that selects a node.
func innerText(n *html.Node, exprs ...string) string {
	for _, expr := range exprs {
		node, err := htmlquery.Query(n, expr)
		if err != nil || node == nil {
			continue
		}
		if t := strings.TrimSpace(htmlquery.InnerText(node)); t != "" {
			return t
		}
	}
	return ""
}

// attrOf returns the named attribute of the first expression that selects
// a node carrying it.
func attrOf(n *html.Node, attr string, exprs ...string) string {
	for _, expr := range exprs {
		node, err := htmlquery.Query(n, expr)
		if err != nil || node == nil {
			continue
		}
		if v := htmlquery.SelectAttr(node, attr); v != "" {
			return v
		}
	}
	return ""
}
