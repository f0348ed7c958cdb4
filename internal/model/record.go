package model

import (
	"time"
)

// Platform tags, as they appear in the 平台 column.
const (
	PlatformJD          = "京东"
	PlatformTaobao      = "淘宝天猫"
	PlatformPinduoduo   = "拼多多"
	PlatformMeituan     = "美团"
	PlatformEleme       = "饿了么"
	PlatformYaofangwang = "药房网"
)

// OwnStoreName is the operator's own storefront. Listings sold by it are
// never recorded, on any platform.
const OwnStoreName = "乐药师大药房旗舰店"

// Candidate is a single scraped listing as a decoder saw it, before
// filtering and normalization. It is never persisted.
type Candidate struct {
	StoreName     string
	StoreURL      string
	RawName       string // the platform's own product title; empty when the page is already scoped to one product
	Image         string
	Price         string
	OriginalPrice string
	Platform      string
	Qualification string // pre-filled by decoders that expose it (Yaofangwang)
}

// Row is one persisted observation in a keyword dataset.
type Row struct {
	UUID          string
	StoreName     string
	StoreURL      string
	Qualification string
	LicenseImage  string
	ProductName   string
	ProductID     string
	Image         string
	OriginalPrice string
	Price         string
	Platform      string
	CaptureDate   string
}

// Header is the dataset header row, in column order.
var Header = []string{
	"uuid",
	"药店名称",
	"店铺主页",
	"资质名称",
	"营业执照图片",
	"药品名",
	"药品ID",
	"药品图片",
	"原价",
	"挂网价格",
	"平台",
	"排查日期",
}

// IdentityKey is the 5-tuple that makes two observations the same.
// Image URLs and prices' presentation are deliberately excluded.
type IdentityKey struct {
	StoreName string
	StoreURL  string
	Product   string
	Price     string
	Platform  string
}

// Key returns the row's identity key.
func (r Row) Key() IdentityKey {
	return IdentityKey{
		StoreName: r.StoreName,
		StoreURL:  r.StoreURL,
		Product:   r.ProductName,
		Price:     r.Price,
		Platform:  r.Platform,
	}
}

// Cells returns the row in dataset column order.
func (r Row) Cells() []string {
	return []string{
		r.UUID,
		r.StoreName,
		r.StoreURL,
		r.Qualification,
		r.LicenseImage,
		r.ProductName,
		r.ProductID,
		r.Image,
		r.OriginalPrice,
		r.Price,
		r.Platform,
		r.CaptureDate,
	}
}

// RowFromCells rebuilds a row from stored cells. Short rows are padded so
// files written before a column was added still load.
func RowFromCells(cells []string) Row {
	c := make([]string, len(Header))
	copy(c, cells)
	return Row{
		UUID:          c[0],
		StoreName:     c[1],
		StoreURL:      c[2],
		Qualification: c[3],
		LicenseImage:  c[4],
		ProductName:   c[5],
		ProductID:     c[6],
		Image:         c[7],
		OriginalPrice: c[8],
		Price:         c[9],
		Platform:      c[10],
		CaptureDate:   c[11],
	}
}

// Normalize maps a candidate into the canonical schema. The platform title
// is discarded: the operator's keyword is authoritative for the 药品名
// column, and the product ID is looked up from it. UUID assignment is the
// merger's job; qualification and licence image stay blank unless the
// decoder supplied them.
func Normalize(c Candidate, kw Keyword, meds *MedicineIndex, now time.Time) Row {
	return Row{
		StoreName:     c.StoreName,
		StoreURL:      c.StoreURL,
		Qualification: c.Qualification,
		ProductName:   kw.Raw(),
		ProductID:     meds.Lookup(kw.Raw()),
		Image:         c.Image,
		OriginalPrice: c.OriginalPrice,
		Price:         c.Price,
		Platform:      c.Platform,
		CaptureDate:   now.Format("2006-01-02"),
	}
}
