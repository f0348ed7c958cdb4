package decoder

import (
	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

// Eleme decodes the Eleme tiny-app search recommend feed
// (waimai-guide.ele.me ... elemetinyapprecommend). The result envelope is
// sometimes an object and sometimes a single-element array.
type Eleme struct{}

func (Eleme) Name() string       { return "eleme" }
func (Eleme) Platform() string   { return model.PlatformEleme }
func (Eleme) SkipsMatcher() bool { return false }

func (d Eleme) Decode(body []byte, kw model.Keyword) ([]model.Candidate, error) {
	if !gjson.ValidBytes(body) {
		return nil, eris.New("eleme: body is not valid JSON")
	}

	result := gjson.GetBytes(body, "data.result")
	if result.IsArray() {
		arr := result.Array()
		if len(arr) == 0 {
			return nil, nil
		}
		result = arr[0]
	}

	var out []model.Candidate
	for _, item := range result.Get("listItems").Array() {
		restaurant := item.Get("info.restaurant")
		if !restaurant.Exists() {
			continue
		}

		storeName := restaurant.Get("name").String()
		if storeName == "" || storeName == model.OwnStoreName {
			continue
		}

		for _, food := range item.Get("info.foods").Array() {
			out = append(out, model.Candidate{
				StoreName: storeName,
				RawName:   food.Get("name").String(),
				Image:     food.Get("imagePath").String(),
				Price:     food.Get("price").String(),
				Platform:  model.PlatformEleme,
			})
		}
	}
	return out, nil
}
