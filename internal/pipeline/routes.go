package pipeline

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/ChaXxl/LysToolBox/internal/cert"
	"github.com/ChaXxl/LysToolBox/internal/decoder"
	"github.com/ChaXxl/LysToolBox/internal/dispatch"
)

// The platform route patterns, in dispatch order. The order mirrors how
// the platforms interleave traffic during a browsing session; overlaps are
// not expected, but earlier entries win if one appears.
var (
	reJDSearch     = regexp.MustCompile(`^https://search\.jd\.com/Search`)
	reJDPaged      = regexp.MustCompile(`^https://api\.m\.jd\.com/\?appid=search-pc-java&functionId=pc_search_s_new`)
	reJDCert       = regexp.MustCompile(`^https://mall\.jd\.com/showLicence`)
	reYFW          = regexp.MustCompile(`^https://www\.yaofangwang\.com/medicine/\d+/`)
	rePDDRawData   = regexp.MustCompile(`^https://mobile\.yangkeduo\.com/search_result\.html`)
	rePDDXHR       = regexp.MustCompile(`^https://mobile\.yangkeduo\.com/proxy/api/search`)
	rePDDCert      = regexp.MustCompile(`query_mall_licence_certificate`)
	rePDDAppCert   = regexp.MustCompile(`water-mark-permanent.*\.jpg`)
	rePDDMobile    = regexp.MustCompile(`^https://api\.pinduoduo\.com/search\?source=index&pdduid`)
	reMeituan      = regexp.MustCompile(`^https://i\.waimai\.meituan\.com/openh5/search/globalpage`)
	reMeituanCert  = regexp.MustCompile(`^https://yiyao-h5\.meituan\.com/wedrug/v2/poi/qualification`)
	reTaobao       = regexp.MustCompile(`^https://h5api\.m\.taobao\.com/h5/mtop\.relationrecommend\.wirelessrecommend\.recommend/2\.0/`)
	reEleme        = regexp.MustCompile(`^https://waimai-guide\.ele\.me/h5/mtop\.relationrecommend\.elemetinyapprecommend\.recommend`)
	reElemeCert    = regexp.MustCompile(`^https://waimai-guide\.ele\.me/h5/mtop\.venus\.shopservice\.getshopqualification/1\.1/5\.0/`)
)

// Routes returns the full platform route table bound to this pipeline.
func (p *Pipeline) Routes() []dispatch.Route {
	return []dispatch.Route{
		{Name: "jd_search", Pattern: reJDSearch, Handle: p.capture(decoder.JDSearch{})},
		{Name: "jd_paged", Pattern: reJDPaged, Handle: p.capture(decoder.JDPaged{})},
		{Name: "jd_cert", Pattern: reJDCert, Handle: p.jdCert},
		{Name: "yaofangwang", Pattern: reYFW, Handle: p.capture(decoder.Yaofangwang{})},
		{Name: "pdd_rawdata", Pattern: rePDDRawData, Handle: p.capture(decoder.PDDRawData{})},
		{Name: "pdd_xhr", Pattern: rePDDXHR, Handle: p.capture(decoder.PDDXHR{})},
		{Name: "pdd_cert", Pattern: rePDDCert, Handle: p.pddCert},
		{Name: "pdd_app_cert", Pattern: rePDDAppCert, Handle: p.pddAppCert},
		{Name: "pdd_mobile", Pattern: rePDDMobile, Handle: p.capture(&decoder.PDDMobile{ResolveMallName: p.resolveMall})},
		{Name: "meituan", Pattern: reMeituan, Handle: p.capture(decoder.Meituan{})},
		{Name: "meituan_cert", Pattern: reMeituanCert, Handle: p.meituanCert},
		{Name: "taobao", Pattern: reTaobao, Handle: p.capture(decoder.Taobao{})},
		{Name: "eleme", Pattern: reEleme, Handle: p.capture(decoder.Eleme{})},
		{Name: "eleme_cert", Pattern: reElemeCert, Handle: p.elemeCert},
	}
}

func (p *Pipeline) jdCert(ev dispatch.Event) error {
	ext, err := cert.ExtractJD(ev.Body, ev.URL)
	if err != nil || ext == nil {
		return err
	}
	return p.patch(ext)
}

func (p *Pipeline) pddCert(ev dispatch.Event) error {
	ext, err := cert.ExtractPDD(ev.Body)
	if err != nil || ext == nil {
		return err
	}
	return p.patch(ext)
}

// pddAppCert sees the licence photo the Pinduoduo app loads directly. The
// URL itself is the artifact; there is no payload to parse and no store
// name to patch by.
func (p *Pipeline) pddAppCert(ev dispatch.Event) error {
	p.log.Info("pinduoduo licence image observed", zap.String("url", ev.URL))
	return nil
}

func (p *Pipeline) meituanCert(ev dispatch.Event) error {
	url, err := cert.ExtractMeituanLicense(ev.Body)
	if err != nil {
		return err
	}
	if url != "" {
		p.log.Info("meituan licence image observed", zap.String("url", url))
	}
	return nil
}

func (p *Pipeline) elemeCert(ev dispatch.Event) error {
	url, err := cert.ExtractElemeLicense(ev.Body)
	if err != nil {
		return err
	}
	if url != "" {
		p.log.Info("eleme licence image observed", zap.String("url", url))
	}
	return nil
}
