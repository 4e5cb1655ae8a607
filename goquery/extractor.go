package goquery

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/meddict"
)

// Extractor turns raw entry-page HTML into a medicine record plus a
// parsing report. It holds no mutable state and is safe for concurrent
// use.
type Extractor struct {
	rules *RuleSet
}

var _ meddict.Extractor = (*Extractor)(nil)
var _ meddict.EntryClassifier = (*Extractor)(nil)

// NewExtractor returns an extractor wired with the default rule set.
func NewExtractor() *Extractor {
	return &Extractor{rules: DefaultRules()}
}

// Extract implements meddict.Extractor. It never fails: document-level
// problems and per-field failures are recorded in the report's
// ParsingErrors and extraction continues with the remaining fields. Both
// return values are always non-nil.
func (e *Extractor) Extract(rawHTML, sourceURL string) (*meddict.MedicineRecord, *meddict.ParsingReport) {
	rec := &meddict.MedicineRecord{}
	rep := meddict.NewParsingReport(sourceURL)

	if strings.TrimSpace(rawHTML) == "" {
		rep.Finalize()
		return rec, rep
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		rep.ParsingErrors = append(rep.ParsingErrors, fmt.Sprintf("parse document: %v", err))
		rep.Finalize()
		return rec, rep
	}

	base := baseURL(sourceURL)
	profile := e.scanProfile(doc, rep)

	for _, f := range meddict.Schema() {
		v, err := e.rules.extract(doc, f, profile, base)
		if err != nil {
			rep.ParsingErrors = append(rep.ParsingErrors, err.Error())
			continue
		}
		if v.empty() {
			continue
		}
		setField(rec, f, v)
		rep.ExtractedFields = append(rep.ExtractedFields, f)
	}

	rep.Finalize()
	return rec, rep
}

// IsMedicineEntry reports whether the page is a medicine dictionary entry.
// The docId space is shared across all of the source's dictionaries, so a
// page can have a headword and still describe a novel or a plant. The cite
// line under the title names the dictionary; older layouts only carry the
// marker in a meta tag.
func (e *Extractor) IsMedicineEntry(rawHTML string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return false
	}
	if meddict.CleanText(doc.Find("h1.headword, h2.headword, h3.headword, .headword").First().Text()) == "" {
		return false
	}
	if strings.Contains(doc.Find("p.cite").Text(), "의약품사전") {
		return true
	}
	marked := false
	doc.Find("meta[content]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(s.AttrOr("content", ""), "의약품") {
			marked = true
			return false
		}
		return true
	})
	return marked
}

// scanProfile guards the one-shot profile table scan. A panic there must
// not abort the run; the profile fields simply go missing.
func (e *Extractor) scanProfile(doc *goquery.Document, rep *meddict.ParsingReport) (out map[meddict.Field]string) {
	defer func() {
		if r := recover(); r != nil {
			rep.ParsingErrors = append(rep.ParsingErrors, fmt.Sprintf("scan profile: %v", r))
			out = map[meddict.Field]string{}
		}
	}()
	return e.rules.profileValues(doc)
}

// setField writes one evaluated value into the record.
func setField(rec *meddict.MedicineRecord, f meddict.Field, v fieldValue) {
	switch f {
	case meddict.FieldKoreanName:
		rec.KoreanName = v.text
	case meddict.FieldEnglishName:
		rec.EnglishName = v.text
	case meddict.FieldDrugCode:
		rec.DrugCode = v.text
	case meddict.FieldFormulation:
		rec.Formulation = v.text
	case meddict.FieldCategory:
		rec.Category = v.text
	case meddict.FieldCompany:
		rec.Company = v.text
	case meddict.FieldAppearance:
		rec.Appearance = v.text
	case meddict.FieldIngredients:
		rec.Ingredients = v.list
	case meddict.FieldEfficacy:
		rec.Efficacy = v.text
	case meddict.FieldDosage:
		rec.Dosage = v.text
	case meddict.FieldPrecautions:
		rec.Precautions = v.text
	case meddict.FieldSideEffects:
		rec.SideEffects = v.text
	case meddict.FieldInteractions:
		rec.Interactions = v.text
	case meddict.FieldStorageMethod:
		rec.StorageMethod = v.text
	case meddict.FieldPregnancyInfo:
		rec.PregnancyInfo = v.text
	case meddict.FieldChildrenInfo:
		rec.ChildrenInfo = v.text
	case meddict.FieldElderlyInfo:
		rec.ElderlyInfo = v.text
	case meddict.FieldImageURL:
		rec.ImageURL = v.text
	case meddict.FieldReferenceURLs:
		rec.ReferenceURLs = v.list
	case meddict.FieldLastUpdated:
		rec.LastUpdated = v.text
	}
}

// baseURL parses sourceURL for relative-link resolution, falling back to
// the encyclopedia origin when the source is unknown or unparsable.
func baseURL(sourceURL string) *url.URL {
	if sourceURL != "" {
		if u, err := url.Parse(sourceURL); err == nil && u.Scheme != "" {
			return u
		}
	}
	u, _ := url.Parse(meddict.SourceBaseURL)
	return u
}
