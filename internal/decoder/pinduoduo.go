package decoder

import (
	"fmt"
	"regexp"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

// ownMallID is the numeric identifier of the operator's own Pinduoduo mall.
const ownMallID = "397292525"

// (?s): the rawData JSON spans lines in the served page.
var rawDataRe = regexp.MustCompile(`(?s)window\.rawData=(.*?);document`)

func pddMallURL(mallID string) string {
	return fmt.Sprintf("https://mobile.yangkeduo.com/mall_page.html?mall_id=%s", mallID)
}

// PDDRawData decodes the Pinduoduo H5 search result page, whose listings
// ride inside a window.rawData assignment embedded in the HTML.
type PDDRawData struct{}

func (PDDRawData) Name() string       { return "pdd_rawdata" }
func (PDDRawData) Platform() string   { return model.PlatformPinduoduo }
func (PDDRawData) SkipsMatcher() bool { return false }

func (d PDDRawData) Decode(body []byte, kw model.Keyword) ([]model.Candidate, error) {
	m := rawDataRe.FindSubmatch(body)
	if m == nil {
		return nil, eris.New("pdd: window.rawData not found")
	}
	if !gjson.ValidBytes(m[1]) {
		return nil, eris.New("pdd: rawData is not valid JSON")
	}

	var out []model.Candidate
	for _, item := range gjson.GetBytes(m[1], "stores.store.data.ssrListData.list").Array() {
		mallID := item.Get("mallEntrance.mall_id").String()
		if mallID == ownMallID {
			continue
		}

		// The SSR payload carries no mall name; the certificate sub-flow
		// fills it in later when the operator opens the storefront.
		out = append(out, model.Candidate{
			StoreURL: pddMallURL(mallID),
			RawName:  item.Get("goodsName").String(),
			Image:    item.Get("imgUrl").String(),
			Price:    item.Get("priceInfo").String(),
			Platform: model.PlatformPinduoduo,
		})
	}
	return out, nil
}

// PDDXHR decodes the Pinduoduo search XHR (mobile.yangkeduo.com/proxy/api/search).
type PDDXHR struct{}

func (PDDXHR) Name() string       { return "pdd_xhr" }
func (PDDXHR) Platform() string   { return model.PlatformPinduoduo }
func (PDDXHR) SkipsMatcher() bool { return false }

func (d PDDXHR) Decode(body []byte, kw model.Keyword) ([]model.Candidate, error) {
	if !gjson.ValidBytes(body) {
		return nil, eris.New("pdd: xhr body is not valid JSON")
	}

	var out []model.Candidate
	for _, item := range gjson.GetBytes(body, "items").Array() {
		goods := item.Get("item_data.goods_model")
		if !goods.Exists() {
			continue
		}

		mallID := goods.Get("mall_id").String()
		if mallID == ownMallID {
			continue
		}

		out = append(out, model.Candidate{
			StoreURL: pddMallURL(mallID),
			RawName:  goods.Get("goods_name").String(),
			Image:    goods.Get("hd_thumb_url").String(),
			Price:    goods.Get("price_info").String(),
			Platform: model.PlatformPinduoduo,
		})
	}
	return out, nil
}

// MallNameFunc resolves a Pinduoduo mall ID to its display name. The app
// search payload identifies stores only by ID, so the session injects a
// resolver that queries the mall info endpoint out of band.
type MallNameFunc func(mallID string) (string, error)

// PDDMobile decodes the Pinduoduo app search feed (api.pinduoduo.com/search).
type PDDMobile struct {
	// ResolveMallName may be nil, in which case store names stay empty.
	ResolveMallName MallNameFunc
}

func (*PDDMobile) Name() string       { return "pdd_mobile" }
func (*PDDMobile) Platform() string   { return model.PlatformPinduoduo }
func (*PDDMobile) SkipsMatcher() bool { return false }

func (d *PDDMobile) Decode(body []byte, kw model.Keyword) ([]model.Candidate, error) {
	if !gjson.ValidBytes(body) {
		return nil, eris.New("pdd: mobile body is not valid JSON")
	}

	log := zap.L().With(zap.String("component", "decoder.pdd_mobile"))

	var out []model.Candidate
	for _, item := range gjson.GetBytes(body, "items").Array() {
		goods := item.Get("item_data.goods_model")
		if !goods.Exists() {
			continue
		}

		mallID := goods.Get("mall_id").String()
		if mallID == ownMallID {
			continue
		}

		var storeName string
		if d.ResolveMallName != nil {
			name, err := d.ResolveMallName(mallID)
			if err != nil {
				log.Warn("mall name lookup failed", zap.String("mall_id", mallID), zap.Error(err))
			} else {
				storeName = name
			}
		}
		if storeName == model.OwnStoreName {
			continue
		}

		out = append(out, model.Candidate{
			StoreName: storeName,
			StoreURL:  pddMallURL(mallID),
			RawName:   goods.Get("goods_name").String(),
			Image:     goods.Get("hd_thumb_url").String(),
			Price:     goods.Get("price_info").String(),
			Platform:  model.PlatformPinduoduo,
		})
	}
	return out, nil
}
