package decoder

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

const pddRawDataPage = `<html><head><script>
window.rawData={"stores":{"store":{"data":{"ssrListData":{"list":[
  {"mallEntrance":{"mall_id":123456},"goodsName":"立迪感冒灵颗粒","imgUrl":"https://img.pddpic.com/a.jpg","priceInfo":"15.8"},
  {"mallEntrance":{"mall_id":397292525},"goodsName":"乐药师感冒灵","imgUrl":"https://img.pddpic.com/b.jpg","priceInfo":"14.0"}
]}}}}};document.title="搜索";
</script></head></html>`

func TestPDDRawData_Decode(t *testing.T) {
	t.Parallel()

	got, err := PDDRawData{}.Decode([]byte(pddRawDataPage), model.Keyword{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "https://mobile.yangkeduo.com/mall_page.html?mall_id=123456", got[0].StoreURL)
	assert.Equal(t, "立迪感冒灵颗粒", got[0].RawName)
	assert.Equal(t, "15.8", got[0].Price)
	assert.Equal(t, model.PlatformPinduoduo, got[0].Platform)
	assert.Empty(t, got[0].StoreName)
}

func TestPDDRawData_MissingAssignment(t *testing.T) {
	t.Parallel()

	_, err := PDDRawData{}.Decode([]byte("<html><body>no data</body></html>"), model.Keyword{})
	assert.Error(t, err)
}

const pddXHRBody = `{"items":[
  {"item_data":{"goods_model":{"mall_id":123456,"goods_name":"立迪感冒灵颗粒","hd_thumb_url":"https://img.pddpic.com/a.jpg","price_info":"15.8"}}},
  {"item_data":{"goods_model":{"mall_id":397292525,"goods_name":"乐药师感冒灵","hd_thumb_url":"https://img.pddpic.com/b.jpg","price_info":"14.0"}}},
  {"item_data":{"ad_model":{"slot":1}}}
]}`

func TestPDDXHR_Decode(t *testing.T) {
	t.Parallel()

	got, err := PDDXHR{}.Decode([]byte(pddXHRBody), model.Keyword{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "https://mobile.yangkeduo.com/mall_page.html?mall_id=123456", got[0].StoreURL)
	assert.Equal(t, "https://img.pddpic.com/a.jpg", got[0].Image)
}

func TestPDDXHR_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := PDDXHR{}.Decode([]byte("<html>"), model.Keyword{})
	assert.Error(t, err)
}

func TestPDDMobile_Decode(t *testing.T) {
	t.Parallel()

	d := &PDDMobile{ResolveMallName: func(mallID string) (string, error) {
		switch mallID {
		case "123456":
			return "百姓缘大药房", nil
		case "777777":
			return model.OwnStoreName, nil
		default:
			return "", eris.Errorf("unknown mall %s", mallID)
		}
	}}

	body := `{"items":[
  {"item_data":{"goods_model":{"mall_id":123456,"goods_name":"立迪感冒灵颗粒","hd_thumb_url":"a.jpg","price_info":"15.8"}}},
  {"item_data":{"goods_model":{"mall_id":777777,"goods_name":"乐药师感冒灵","hd_thumb_url":"b.jpg","price_info":"14.0"}}},
  {"item_data":{"goods_model":{"mall_id":999999,"goods_name":"感冒灵胶囊","hd_thumb_url":"c.jpg","price_info":"13.0"}}}
]}`

	got, err := d.Decode([]byte(body), model.Keyword{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "百姓缘大药房", got[0].StoreName)

	// Resolver failure degrades to an empty store name, not an error.
	assert.Empty(t, got[1].StoreName)
	assert.Equal(t, "感冒灵胶囊", got[1].RawName)
}

func TestPDDMobile_NilResolver(t *testing.T) {
	t.Parallel()

	d := &PDDMobile{}
	body := `{"items":[{"item_data":{"goods_model":{"mall_id":123456,"goods_name":"感冒灵","price_info":"1"}}}]}`

	got, err := d.Decode([]byte(body), model.Keyword{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].StoreName)
}
