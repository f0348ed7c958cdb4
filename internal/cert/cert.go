// Package cert extracts business-licence details from storefront
// qualification pages. It only ever patches existing dataset rows; the
// capture flow owns row creation.
package cert

import (
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/ChaXxl/LysToolBox/internal/model"
)

// withheldPhrase appears in place of the company name when the platform
// suppresses it. Such pages carry no usable qualification.
const withheldPhrase = "根据国家相关政策"

var jdTitleRe = regexp.MustCompile(`document\.title="(.*?)"`)

// Extraction is a qualification found on a licence page. A nil extraction
// from any Extract function means the page held nothing usable, which is
// not an error.
type Extraction struct {
	Platform     string
	StoreName    string
	CompanyName  string
	LicenseImage string
}

// ExtractJD parses a JD business-licence page (mall.jd.com/showLicence).
// The storefront name rides in an inline document.title assignment and the
// registered company name in the second no-border list item. The page URL
// itself is recorded as the licence image reference.
func ExtractJD(body []byte, pageURL string) (*Extraction, error) {
	m := jdTitleRe.FindSubmatch(body)
	if m == nil {
		return nil, nil
	}
	storeName := strings.TrimSpace(string(m[1]))
	if storeName == "" {
		return nil, nil
	}

	doc, err := htmlquery.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, eris.Wrap(err, "cert: parse jd licence page")
	}

	node, err := htmlquery.Query(doc, `//li[@class="noBorder"][2]/span`)
	if err != nil || node == nil {
		return nil, nil
	}

	company := strings.TrimSpace(htmlquery.InnerText(node))
	if company == "" || strings.Contains(company, withheldPhrase) {
		return nil, nil
	}

	return &Extraction{
		Platform:     model.PlatformJD,
		StoreName:    storeName,
		CompanyName:  company,
		LicenseImage: pageURL,
	}, nil
}

// ExtractPDD parses the Pinduoduo mall licence endpoint. The mall name
// doubles as the qualification name there.
func ExtractPDD(body []byte) (*Extraction, error) {
	if !gjson.ValidBytes(body) {
		return nil, eris.New("cert: pdd licence body is not valid JSON")
	}

	mallName := gjson.GetBytes(body, "mall_name").String()
	if mallName == "" || strings.Contains(mallName, withheldPhrase) {
		return nil, nil
	}

	return &Extraction{
		Platform:     model.PlatformPinduoduo,
		StoreName:    mallName,
		CompanyName:  mallName,
		LicenseImage: gjson.GetBytes(body, "mall_business_licence_info.business_licence_url").String(),
	}, nil
}

// ExtractMeituanLicense pulls the licence photo URL from the Meituan poi
// qualification endpoint. The response names no storefront, so the URL is
// surfaced on the log channel rather than patched into a dataset.
func ExtractMeituanLicense(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", eris.New("cert: meituan qualification body is not valid JSON")
	}
	return gjson.GetBytes(body, "data.poi_qualify_details.0.qualify_pic").String(), nil
}

// ExtractElemeLicense pulls the licence photo URL from the Eleme shop
// qualification endpoint. Like Meituan, no storefront name comes with it.
func ExtractElemeLicense(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", eris.New("cert: eleme qualification body is not valid JSON")
	}
	return gjson.GetBytes(body, "data.data.shopNewQualification.0.qualificationPic.0").String(), nil
}
