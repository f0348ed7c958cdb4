package decoder

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

// courierTag marks Meituan stores that ship by courier instead of local
// delivery. Only those are in scope: local-delivery pharmacies are
// geo-restricted and not comparable observations.
const courierTag = "快递电商"

// Meituan decodes the waimai global-search page feed
// (i.waimai.meituan.com/openh5/search/globalpage). Each module wraps its
// store payload in a string_data field that is itself JSON.
type Meituan struct{}

func (Meituan) Name() string       { return "meituan" }
func (Meituan) Platform() string   { return model.PlatformMeituan }
func (Meituan) SkipsMatcher() bool { return false }

func (d Meituan) Decode(body []byte, kw model.Keyword) ([]model.Candidate, error) {
	if !gjson.ValidBytes(body) {
		return nil, eris.New("meituan: body is not valid JSON")
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		// The endpoint returns a bare string on empty or throttled results.
		return nil, nil
	}

	log := zap.L().With(zap.String("component", "decoder.meituan"))

	var out []model.Candidate
	for _, module := range data.Get("module_list").Array() {
		raw := module.Get("string_data").String()
		store := gjson.Parse(raw)
		if !store.IsObject() {
			log.Debug("module without parseable string_data, skipping")
			continue
		}

		storeName := store.Get("name").String()
		if !strings.Contains(storeName, courierTag) {
			continue
		}
		// Strip the tag first: the own storefront also carries it.
		storeName = strings.ReplaceAll(storeName, "（"+courierTag+"）", "")
		if storeName == "" || storeName == model.OwnStoreName {
			continue
		}

		for _, product := range store.Get("product_list").Array() {
			out = append(out, model.Candidate{
				StoreName:     storeName,
				RawName:       product.Get("product_name").String(),
				Image:         product.Get("picture").String(),
				Price:         product.Get("price").String(),
				OriginalPrice: product.Get("original_price").String(),
				Platform:      model.PlatformMeituan,
			})
		}
	}
	return out, nil
}
