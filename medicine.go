package meddict

import (
	"context"
	"strings"
	"time"
)

// MedicineRecord is the canonical extracted entity. Every attribute is
// optional: the zero value means the field is absent, which is distinct
// from any present value (present values are trimmed and never empty).
type MedicineRecord struct {
	// Identity.
	KoreanName  string `json:"koreanName,omitempty"`
	EnglishName string `json:"englishName,omitempty"`
	DrugCode    string `json:"drugCode,omitempty"`
	Formulation string `json:"formulation,omitempty"`

	// Classification.
	Category string `json:"category,omitempty"`
	Company  string `json:"company,omitempty"`

	// Descriptive.
	Appearance  string   `json:"appearance,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`

	// Clinical.
	Efficacy      string `json:"efficacy,omitempty"`
	Dosage        string `json:"dosage,omitempty"`
	Precautions   string `json:"precautions,omitempty"`
	SideEffects   string `json:"sideEffects,omitempty"`
	Interactions  string `json:"interactions,omitempty"`
	StorageMethod string `json:"storageMethod,omitempty"`

	// Special-population notes.
	PregnancyInfo string `json:"pregnancyInfo,omitempty"`
	ChildrenInfo  string `json:"childrenInfo,omitempty"`
	ElderlyInfo   string `json:"elderlyInfo,omitempty"`

	// Media and reference.
	ImageURL      string   `json:"imageUrl,omitempty"`
	ReferenceURLs []string `json:"referenceUrls,omitempty"`
	LastUpdated   string   `json:"lastUpdated,omitempty"`
}

// Value returns the record's canonical string form for the named field and
// whether the field is present. List fields render as their elements joined
// with ", ".
func (r *MedicineRecord) Value(f Field) (string, bool) {
	var v string
	switch f {
	case FieldKoreanName:
		v = r.KoreanName
	case FieldEnglishName:
		v = r.EnglishName
	case FieldDrugCode:
		v = r.DrugCode
	case FieldFormulation:
		v = r.Formulation
	case FieldCategory:
		v = r.Category
	case FieldCompany:
		v = r.Company
	case FieldAppearance:
		v = r.Appearance
	case FieldIngredients:
		v = strings.Join(r.Ingredients, ", ")
	case FieldEfficacy:
		v = r.Efficacy
	case FieldDosage:
		v = r.Dosage
	case FieldPrecautions:
		v = r.Precautions
	case FieldSideEffects:
		v = r.SideEffects
	case FieldInteractions:
		v = r.Interactions
	case FieldStorageMethod:
		v = r.StorageMethod
	case FieldPregnancyInfo:
		v = r.PregnancyInfo
	case FieldChildrenInfo:
		v = r.ChildrenInfo
	case FieldElderlyInfo:
		v = r.ElderlyInfo
	case FieldImageURL:
		v = r.ImageURL
	case FieldReferenceURLs:
		v = strings.Join(r.ReferenceURLs, ", ")
	case FieldLastUpdated:
		v = r.LastUpdated
	}
	return v, v != ""
}

// Fields returns the names of the populated fields in schema order.
func (r *MedicineRecord) Fields() []Field {
	var out []Field
	for _, f := range schema {
		if _, ok := r.Value(f); ok {
			out = append(out, f)
		}
	}
	return out
}

// Medicine is a stored medicine entry: an extracted record plus the
// provenance and bookkeeping the store and pipeline need.
type Medicine struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	DocID string `json:"docId,omitempty"`

	Record MedicineRecord `json:"record"`

	// RawHTML is the entry page the record was extracted from.
	// Retained so stored entries can be re-extracted and validated offline.
	RawHTML string `json:"-"`

	// DataHash fingerprints the record content for change detection.
	DataHash string `json:"dataHash,omitempty"`

	// Completeness is the presence ratio reported by the extraction run.
	Completeness float64 `json:"completeness"`

	// ImagePath is the local path of the downloaded entry image, if any.
	ImagePath string `json:"imagePath,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the medicine contains invalid fields.
func (m *Medicine) Validate() error {
	if m.URL == "" {
		return Errorf(EINVALID, "medicine URL required")
	}
	return nil
}

// MedicineService represents a service for managing stored medicines.
type MedicineService interface {
	// CreateMedicine creates a new medicine entry.
	// Returns ECONFLICT if an entry with the same URL already exists.
	CreateMedicine(ctx context.Context, m *Medicine) error

	// FindMedicineByID retrieves a medicine by ID.
	// Returns ENOTFOUND if the medicine does not exist.
	FindMedicineByID(ctx context.Context, id string) (*Medicine, error)

	// FindMedicineByURL retrieves a medicine by its entry URL.
	// Returns ENOTFOUND if the medicine does not exist.
	FindMedicineByURL(ctx context.Context, url string) (*Medicine, error)

	// FindMedicines retrieves medicines matching the filter, sorted by
	// creation time. Also returns the total count of matching entries,
	// ignoring limit and offset.
	FindMedicines(ctx context.Context, filter MedicineFilter) ([]*Medicine, int, error)

	// CountMedicines returns the total number of stored medicines.
	CountMedicines(ctx context.Context) (int, error)

	// UpdateMedicine updates a medicine entry.
	// Returns ENOTFOUND if the medicine does not exist.
	UpdateMedicine(ctx context.Context, id string, upd MedicineUpdate) (*Medicine, error)

	// DeleteMedicine permanently removes a medicine entry.
	// Returns ENOTFOUND if the medicine does not exist.
	DeleteMedicine(ctx context.Context, id string) error
}

// MedicineFilter represents a filter for FindMedicines.
// Name matches the Korean or English name as a substring.
type MedicineFilter struct {
	ID       *string `json:"id"`
	URL      *string `json:"url"`
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Company  *string `json:"company"`

	// MinCompleteness keeps only entries whose extraction completeness is
	// at least this ratio.
	MinCompleteness *float64 `json:"minCompleteness"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// MedicineUpdate represents a set of fields to update on a medicine.
type MedicineUpdate struct {
	Record       *MedicineRecord `json:"record"`
	RawHTML      *string         `json:"rawHtml"`
	DataHash     *string         `json:"dataHash"`
	Completeness *float64        `json:"completeness"`
	ImagePath    *string         `json:"imagePath"`
}
