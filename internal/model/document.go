package model

import "github.com/shopspring/decimal"

// PageSize holds one page's media-box dimensions in points.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultPageSize is assumed for bbox validation when the extraction
// response carries no page dimensions (US Letter portrait).
var DefaultPageSize = PageSize{Width: 612, Height: 792}

// Document is one filing's extraction output as consumed by validation:
// the flat ordered row list plus the page/metadata context needed for
// provenance checks.
type Document struct {
	JobID      string `json:"job_id,omitempty"`
	SourceFile string `json:"source_file,omitempty"`

	// PeriodEnd comes from filing metadata; CoverDate is the date the
	// extractor read off the cover page. Disagreement is DATE_MISMATCH.
	PeriodEnd string `json:"period_end,omitempty"`
	CoverDate string `json:"cover_date,omitempty"`

	NumPages int              `json:"num_pages"`
	PageDims map[int]PageSize `json:"page_dimensions,omitempty"`

	// SOIPages are the 1-based pages the split stage believes contain
	// schedule content. The sanitizer may expand this set (gap repair).
	SOIPages []int `json:"soi_pages,omitempty"`

	// NetAssets is the document-level declared "Total net assets" figure,
	// when the extractor found one outside the row list.
	NetAssets *decimal.Decimal `json:"net_assets,omitempty"`

	Rows []Row `json:"rows"`
}

// PageDim returns the dimensions of page (1-based), falling back to
// DefaultPageSize when the document does not carry them.
func (d *Document) PageDim(page int) PageSize {
	if d == nil || d.PageDims == nil {
		return DefaultPageSize
	}
	if ps, ok := d.PageDims[page]; ok && ps.Width > 0 && ps.Height > 0 {
		return ps
	}
	return DefaultPageSize
}
