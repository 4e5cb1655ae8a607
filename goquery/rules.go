// Package goquery implements the medicine record extractor on top of
// permissive HTML parsing with goquery.
package goquery

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/meddict"
)

// RuleSet holds the per-field extraction rules. Each field carries an
// ordered chain of locators; the first locator producing a non-empty
// trimmed value wins. Supporting a new document layout means appending a
// locator to the right chain, never touching extraction control flow.
type RuleSet struct {
	// scalar maps fields to direct locator chains (text, or an attribute
	// when locator.attr is set).
	scalar map[meddict.Field][]locator

	// profileContainers are tried in order when scanning the profile
	// label/value table. A document-wide scan runs last.
	profileContainers []string

	// profileLabels dispatches exact label text to a field.
	// Unrecognized labels are ignored, never errors.
	profileLabels map[string]meddict.Field

	// sectionTokens lists the Korean section-name tokens per section
	// field, in lookup order.
	sectionTokens map[meddict.Field][]string

	// listFields render as ordered string sequences instead of scalars.
	listFields map[meddict.Field]bool
}

// locator is one structural pattern in a fallback chain.
type locator struct {
	selector string
	// attr, when set, reads this attribute of the first match instead of
	// its text content.
	attr string
	// all, when set, collects the value from every match, not just the
	// first. Used for list fields.
	all bool
}

// tocIDPrefix is the versioned container id prefix some document
// revisions use for section headings instead of section-name ids.
const tocIDPrefix = "TABLE_OF_CONTENT"

// DefaultRules returns the rule set for the known entry page layouts.
func DefaultRules() *RuleSet {
	return &RuleSet{
		scalar: map[meddict.Field][]locator{
			meddict.FieldKoreanName: {
				{selector: "h1.headword"},
				{selector: "h2.headword"},
				{selector: "h3.headword"},
				{selector: ".headword"},
			},
			meddict.FieldEnglishName: {
				{selector: "p.word_txt"},
				{selector: "span.word_txt"},
				{selector: ".word_txt"},
			},
			meddict.FieldImageURL: {
				{selector: "span.img_box img", attr: "src"},
				{selector: ".img_box img", attr: "src"},
				{selector: ".att_img img", attr: "src"},
				{selector: "img.size_ct_v2", attr: "src"},
			},
			meddict.FieldReferenceURLs: {
				{selector: ".reference a[href]", attr: "href", all: true},
				{selector: ".relate_wrap a[href]", attr: "href", all: true},
				{selector: "p.cite a[href]", attr: "href", all: true},
			},
			meddict.FieldLastUpdated: {
				{selector: "p.date"},
				{selector: "span.date"},
				{selector: ".date"},
				{selector: ".update_date"},
				{selector: "meta[property='og:updated_time']", attr: "content"},
			},
		},
		profileContainers: []string{
			".profile_wrap",
			"table.tmp_profile",
			".tmp_profile",
			"dl.profile",
		},
		profileLabels: map[string]meddict.Field{
			"분류":   meddict.FieldCategory,
			"업체명":  meddict.FieldCompany,
			"제조사":  meddict.FieldCompany,
			"성상":   meddict.FieldAppearance,
			"보험코드": meddict.FieldDrugCode,
			"표준코드": meddict.FieldDrugCode,
			"제형":   meddict.FieldFormulation,
			"구분":   meddict.FieldFormulation,
		},
		sectionTokens: map[meddict.Field][]string{
			meddict.FieldIngredients:   {"성분정보", "성분"},
			meddict.FieldEfficacy:      {"효능효과", "효능"},
			meddict.FieldDosage:        {"용법용량", "용법"},
			meddict.FieldPrecautions:   {"주의사항"},
			meddict.FieldSideEffects:   {"이상반응", "부작용"},
			meddict.FieldInteractions:  {"상호작용"},
			meddict.FieldStorageMethod: {"저장방법", "보관방법"},
			meddict.FieldPregnancyInfo: {"임부", "임산부"},
			meddict.FieldChildrenInfo:  {"소아"},
			meddict.FieldElderlyInfo:   {"고령자", "노인"},
		},
		listFields: map[meddict.Field]bool{
			meddict.FieldIngredients:   true,
			meddict.FieldReferenceURLs: true,
		},
	}
}

// fieldValue is the outcome of one field's rule evaluation: a scalar or an
// ordered list, both in canonical cleaned form.
type fieldValue struct {
	text string
	list []string
}

func (v fieldValue) empty() bool {
	return v.text == "" && len(v.list) == 0
}

// extract evaluates the rule chain for one field. profile holds the
// precomputed profile-table values; base resolves relative URLs.
func (rs *RuleSet) extract(doc *goquery.Document, f meddict.Field, profile map[meddict.Field]string, base *url.URL) (out fieldValue, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract %s: %v", f, r)
		}
	}()

	if v, ok := profile[f]; ok {
		return fieldValue{text: v}, nil
	}

	if tokens, ok := rs.sectionTokens[f]; ok {
		text := rs.sectionText(doc, tokens)
		if text == "" {
			return fieldValue{}, nil
		}
		if rs.listFields[f] {
			return fieldValue{list: splitList(text)}, nil
		}
		return fieldValue{text: text}, nil
	}

	for _, loc := range rs.scalar[f] {
		v := rs.applyLocator(doc, loc, f, base)
		if !v.empty() {
			return v, nil
		}
	}
	return fieldValue{}, nil
}

// applyLocator evaluates a single locator against the document.
func (rs *RuleSet) applyLocator(doc *goquery.Document, loc locator, f meddict.Field, base *url.URL) fieldValue {
	sel := doc.Find(loc.selector)
	if sel.Length() == 0 {
		return fieldValue{}
	}

	if loc.all {
		var list []string
		seen := make(map[string]bool)
		sel.Each(func(_ int, s *goquery.Selection) {
			v := locatorValue(s, loc, f, base)
			if v == "" || seen[v] {
				return
			}
			seen[v] = true
			list = append(list, v)
		})
		return fieldValue{list: list}
	}

	return fieldValue{text: locatorValue(sel.First(), loc, f, base)}
}

// locatorValue reads a single element's value per the locator mode.
func locatorValue(s *goquery.Selection, loc locator, f meddict.Field, base *url.URL) string {
	if loc.attr == "" {
		return meddict.CleanText(s.Text())
	}
	v := meddict.CleanText(s.AttrOr(loc.attr, ""))
	if v == "" {
		return ""
	}
	if loc.attr == "src" || loc.attr == "href" {
		return absoluteURL(base, v)
	}
	return v
}

// profileValues scans the profile label/value structure once per document
// and returns the first value found per field. Labels dispatch through the
// exact-match dictionary; anything else is skipped.
func (rs *RuleSet) profileValues(doc *goquery.Document) map[meddict.Field]string {
	out := make(map[meddict.Field]string)
	for _, container := range rs.profileContainers {
		doc.Find(container).Each(func(_ int, c *goquery.Selection) {
			rs.scanPairs(c, out)
		})
	}
	// Legacy revisions render the pairs without a recognizable container.
	rs.scanPairs(doc.Selection, out)
	return out
}

// scanPairs collects label/value pairs (dt→dd and th→td) under root.
func (rs *RuleSet) scanPairs(root *goquery.Selection, out map[meddict.Field]string) {
	root.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		rs.assignPair(dt, dt.Next().Filter("dd"), out)
	})
	root.Find("th").Each(func(_ int, th *goquery.Selection) {
		rs.assignPair(th, th.Next().Filter("td"), out)
	})
}

func (rs *RuleSet) assignPair(label, value *goquery.Selection, out map[meddict.Field]string) {
	f, ok := rs.profileLabels[meddict.CleanText(label.Text())]
	if !ok {
		return
	}
	if _, have := out[f]; have {
		return
	}
	if v := meddict.CleanText(value.Text()); v != "" {
		out[f] = v
	}
}

// sectionText finds a section's body text by token, trying in order:
// containers whose id is prefixed by the token (id suffix variants
// included), versioned table-of-content heading ids, and class-based
// containers matched by heading text.
func (rs *RuleSet) sectionText(doc *goquery.Document, tokens []string) string {
	for _, tok := range tokens {
		sel := doc.Find(fmt.Sprintf("[id^='%s']", tok)).First()
		if text := sectionBody(sel); text != "" {
			return text
		}
	}

	var fromTOC string
	doc.Find(fmt.Sprintf("[id^='%s']", tocIDPrefix)).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		heading := meddict.CleanText(s.Text())
		for _, tok := range tokens {
			if strings.Contains(heading, tok) {
				fromTOC = followingText(s)
				return fromTOC == ""
			}
		}
		return true
	})
	if fromTOC != "" {
		return fromTOC
	}

	var fromClass string
	doc.Find("div.section, div.content").EachWithBreak(func(_ int, c *goquery.Selection) bool {
		heading := c.Find("h2, h3, h4, strong").First()
		title := meddict.CleanText(heading.Text())
		for _, tok := range tokens {
			if strings.Contains(title, tok) {
				fromClass = containerBody(c)
				return fromClass == ""
			}
		}
		return true
	})
	return fromClass
}

// sectionBody returns the text of a section container. When the match is a
// heading element the body is the run of following siblings up to the next
// heading; otherwise it is the container's own text minus any embedded
// heading.
func sectionBody(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	if isHeading(sel) {
		return followingText(sel)
	}
	return containerBody(sel)
}

// followingText collects sibling text after a heading until the next
// heading begins.
func followingText(heading *goquery.Selection) string {
	var parts []string
	for sib := heading.Next(); sib.Length() > 0 && !isHeading(sib); sib = sib.Next() {
		if t := meddict.CleanText(sib.Text()); t != "" {
			parts = append(parts, t)
		}
	}
	return meddict.CleanText(strings.Join(parts, " "))
}

// containerBody returns a container's text with embedded headings removed,
// so section bodies do not start with their own title.
func containerBody(c *goquery.Selection) string {
	clone := c.Clone()
	clone.Find("h1, h2, h3, h4, h5, h6").Remove()
	return meddict.CleanText(clone.Text())
}

func isHeading(s *goquery.Selection) bool {
	return s.Is("h1, h2, h3, h4, h5, h6")
}

var listSeparatorRe = regexp.MustCompile(`[,·]`)

// splitList breaks a section text into its ordered elements. Values
// without a recognized separator become a single-element list.
func splitList(text string) []string {
	parts := listSeparatorRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := meddict.CleanText(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// absoluteURL resolves href against base. Opaque schemes and anchors are
// dropped.
func absoluteURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}
