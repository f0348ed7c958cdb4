// Package pipeline wires the interception flow: route table, decode,
// keyword filter, normalization, and the serialized dataset merge. One
// pipeline serves one active search keyword.
package pipeline

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ChaXxl/LysToolBox/internal/cert"
	"github.com/ChaXxl/LysToolBox/internal/dataset"
	"github.com/ChaXxl/LysToolBox/internal/decoder"
	"github.com/ChaXxl/LysToolBox/internal/dispatch"
	"github.com/ChaXxl/LysToolBox/internal/model"
)

// Options configures a capture pipeline.
type Options struct {
	// DatasetPath is the keyword's workbook file.
	DatasetPath string

	// Keyword is the active search keyword.
	Keyword model.Keyword

	// Medicines resolves product IDs; nil disables the lookup.
	Medicines *model.MedicineIndex

	// ResolveMallName backs the Pinduoduo app decoder; nil leaves its
	// store names empty.
	ResolveMallName decoder.MallNameFunc

	// Now overrides the capture-date clock in tests.
	Now func() time.Time
}

// Pipeline turns intercepted responses for one keyword into dataset rows.
// The mutex serializes the capture flow and the certificate sub-flow
// against the shared workbook.
type Pipeline struct {
	mu   sync.Mutex
	path string
	kw   model.Keyword
	meds *model.MedicineIndex
	now  func() time.Time
	log  *zap.Logger

	resolveMall decoder.MallNameFunc
}

// New builds a pipeline for a keyword.
func New(opts Options) *Pipeline {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		path:        opts.DatasetPath,
		kw:          opts.Keyword,
		meds:        opts.Medicines,
		now:         now,
		resolveMall: opts.ResolveMallName,
		log:         zap.L().With(zap.String("component", "pipeline"), zap.String("keyword", opts.Keyword.Raw())),
	}
}

// capture adapts a platform decoder into a route handler: decode, filter
// against the keyword, normalize, merge.
func (p *Pipeline) capture(dec decoder.Decoder) dispatch.Handler {
	return func(ev dispatch.Event) error {
		cands, err := dec.Decode(ev.Body, p.kw)
		if err != nil {
			return err
		}

		var rows []model.Row
		for _, c := range cands {
			// Decoders for pages already scoped to one product bypass the
			// matcher; everything else must pass it, titled or not.
			if !dec.SkipsMatcher() && !p.kw.Matches(c.RawName) {
				p.log.Debug("rejected by keyword match",
					zap.String("title", c.RawName),
					zap.String("platform", c.Platform),
				)
				continue
			}
			rows = append(rows, model.Normalize(c, p.kw, p.meds, p.now()))
		}

		return p.merge(rows, dec.Name())
	}
}

// merge folds rows into the keyword dataset under the file lock. Zero
// insertions skip the rewrite entirely.
func (p *Pipeline) merge(rows []model.Row, tag string) error {
	log := p.log.With(zap.String("source", tag))
	if len(rows) == 0 {
		log.Debug("no candidates to merge")
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ds, err := dataset.Load(p.path)
	if err != nil {
		return eris.Wrapf(err, "pipeline: load dataset %s", p.path)
	}

	res := dataset.Merge(ds, rows)
	if res.Inserted == 0 {
		log.Info("nothing to save", zap.Int("total", res.Total))
		return nil
	}

	if err := ds.Save(); err != nil {
		return eris.Wrapf(err, "pipeline: save dataset %s", p.path)
	}

	log.Info("merged rows", zap.Int("inserted", res.Inserted), zap.Int("total", res.Total))
	return nil
}

// patch applies a certificate extraction to every matching dataset row.
// It updates in place and never creates rows.
func (p *Pipeline) patch(ext *cert.Extraction) error {
	log := p.log.With(zap.String("platform", ext.Platform), zap.String("store", ext.StoreName))

	p.mu.Lock()
	defer p.mu.Unlock()

	ds, err := dataset.Load(p.path)
	if err != nil {
		return eris.Wrapf(err, "pipeline: load dataset %s", p.path)
	}

	patched := ds.PatchQualification(ext.StoreName, ext.CompanyName, ext.LicenseImage)
	if patched == 0 {
		log.Info("store not found in dataset")
		return nil
	}

	if err := ds.Save(); err != nil {
		return eris.Wrapf(err, "pipeline: save dataset %s", p.path)
	}

	log.Info("qualification patched", zap.Int("rows", patched), zap.String("company", ext.CompanyName))
	return nil
}
