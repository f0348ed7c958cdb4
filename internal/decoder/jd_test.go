package decoder

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

func jdItem(store, title, price string) string {
	return fmt.Sprintf(`<li data-sku="100">
  <div>
    <div class="p-img"><a href="//item.jd.com/100.html"><img data-lazy-img="//img10.360buyimg.com/a.jpg"/></a></div>
    <div class="p-price"><strong><i>%s</i></strong></div>
    <div class="p-name"><a href="//item.jd.com/100.html"><em>%s</em></a></div>
    <div class="p-commit"></div>
    <div class="p-shop"><span><a title="%s" href="//mall.jd.com/index-1.html"></a></span></div>
  </div>
</li>`, price, title, store)
}

func jdSearchPage(items ...string) string {
	page := `<html><body><div id="J_goodsList"><ul class="gl-warp">`
	for _, it := range items {
		page += it
	}
	return page + `</ul></div></body></html>`
}

func TestJDSearch_Decode(t *testing.T) {
	t.Parallel()

	body := jdSearchPage(
		jdItem("药无忧大药房", "立迪感冒灵颗粒 12袋", "29.90"),
		jdItem("仁和大药房", "仁和感冒灵", "19.90"),
	)

	kw, err := model.ParseKeyword("安徽 立迪 感冒灵")
	require.NoError(t, err)

	got, err := JDSearch{}.Decode([]byte(body), kw)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "药无忧大药房", got[0].StoreName)
	assert.Equal(t, "https://mall.jd.com/index-1.html", got[0].StoreURL)
	assert.Equal(t, "立迪感冒灵颗粒 12袋", got[0].RawName)
	assert.Equal(t, "https://img10.360buyimg.com/a.jpg", got[0].Image)
	assert.Equal(t, "29.90", got[0].Price)
	assert.Equal(t, model.PlatformJD, got[0].Platform)
	assert.Empty(t, got[0].OriginalPrice)
}

func TestJDSearch_ExcludesOwnStore(t *testing.T) {
	t.Parallel()

	body := jdSearchPage(
		jdItem(model.OwnStoreName, "立迪感冒灵颗粒", "29.90"),
		jdItem("仁和大药房", "仁和感冒灵", "19.90"),
	)

	got, err := JDSearch{}.Decode([]byte(body), model.Keyword{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "仁和大药房", got[0].StoreName)
}

func TestJDSearch_BrokenItemDoesNotAbort(t *testing.T) {
	t.Parallel()

	// The first item has no price node at all; the second is intact.
	broken := `<li data-sku="1"><div><div class="p-img"></div></div></li>`
	body := jdSearchPage(broken, jdItem("仁和大药房", "仁和感冒灵", "19.90"))

	got, err := JDSearch{}.Decode([]byte(body), model.Keyword{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "仁和大药房", got[0].StoreName)
}

func TestJDSearch_EmptyBody(t *testing.T) {
	t.Parallel()

	got, err := JDSearch{}.Decode([]byte("<html><body></body></html>"), model.Keyword{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestJDPaged_Decode(t *testing.T) {
	t.Parallel()

	fragment := jdItem("康泽大药房", "立迪感冒灵颗粒\n满减促销", "25.00") +
		jdItem("仁和大药房", "仁和感冒灵", "19.90") +
		"<script>window.track()</script><script>more()</script>"

	got, err := JDPaged{}.Decode([]byte(fragment), model.Keyword{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Promotional text after the line break is dropped from titles.
	assert.Equal(t, "立迪感冒灵颗粒", got[0].RawName)
	assert.Equal(t, "康泽大药房", got[0].StoreName)
	assert.Equal(t, "25.00", got[0].Price)
}

func TestJDPaged_NoListingMarker(t *testing.T) {
	t.Parallel()

	got, err := JDPaged{}.Decode([]byte("<script>nothing here</script>"), model.Keyword{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSliceBetween(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		s          string
		start, end string
		want       string
	}{
		{"both markers", "aaa<li data-sku=1>x</li><script>y", "<li data-sku=", "<script>", "<li data-sku=1>x</li>"},
		{"missing start", "plain text", "<li data-sku=", "<script>", ""},
		{"missing end", "aaa<li data-sku=1>x", "<li data-sku=", "<script>", "<li data-sku=1>x"},
		{"end before start ignored", "<script>a</script><li data-sku=2>", "<li data-sku=", "<script>", "<li data-sku=2>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sliceBetween(tt.s, tt.start, tt.end))
		})
	}
}
