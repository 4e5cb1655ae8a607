package meddict

// Field names a single attribute of a MedicineRecord. The set of valid
// fields is fixed and closed: extraction and validation may only ever
// produce fields from this set.
type Field string

// Recognized record fields, in canonical schema order.
const (
	FieldKoreanName    Field = "koreanName"
	FieldEnglishName   Field = "englishName"
	FieldDrugCode      Field = "drugCode"
	FieldFormulation   Field = "formulation"
	FieldCategory      Field = "category"
	FieldCompany       Field = "company"
	FieldAppearance    Field = "appearance"
	FieldIngredients   Field = "ingredients"
	FieldEfficacy      Field = "efficacy"
	FieldDosage        Field = "dosage"
	FieldPrecautions   Field = "precautions"
	FieldSideEffects   Field = "sideEffects"
	FieldInteractions  Field = "interactions"
	FieldStorageMethod Field = "storageMethod"
	FieldPregnancyInfo Field = "pregnancyInfo"
	FieldChildrenInfo  Field = "childrenInfo"
	FieldElderlyInfo   Field = "elderlyInfo"
	FieldImageURL      Field = "imageUrl"
	FieldReferenceURLs Field = "referenceUrls"
	FieldLastUpdated   Field = "lastUpdated"
)

// schema is the authoritative ordered field list. Every piece of
// extracted/missing accounting derives from this slice; no other package
// may declare its own copy.
var schema = []Field{
	FieldKoreanName,
	FieldEnglishName,
	FieldDrugCode,
	FieldFormulation,
	FieldCategory,
	FieldCompany,
	FieldAppearance,
	FieldIngredients,
	FieldEfficacy,
	FieldDosage,
	FieldPrecautions,
	FieldSideEffects,
	FieldInteractions,
	FieldStorageMethod,
	FieldPregnancyInfo,
	FieldChildrenInfo,
	FieldElderlyInfo,
	FieldImageURL,
	FieldReferenceURLs,
	FieldLastUpdated,
}

// Schema returns the ordered, closed list of record fields.
// The returned slice is a copy; callers may not mutate the registry.
func Schema() []Field {
	out := make([]Field, len(schema))
	copy(out, schema)
	return out
}

// SchemaSize returns the number of fields in the schema.
func SchemaSize() int {
	return len(schema)
}

// ValidField reports whether f is a recognized record field.
func ValidField(f Field) bool {
	for _, s := range schema {
		if s == f {
			return true
		}
	}
	return false
}

// FieldGroup names a semantic grouping of record fields.
type FieldGroup string

// Semantic field groups.
const (
	GroupIdentity       FieldGroup = "identity"
	GroupClassification FieldGroup = "classification"
	GroupDescriptive    FieldGroup = "descriptive"
	GroupClinical       FieldGroup = "clinical"
	GroupPopulation     FieldGroup = "special-population"
	GroupMedia          FieldGroup = "media/reference"
)

var fieldGroups = map[Field]FieldGroup{
	FieldKoreanName:    GroupIdentity,
	FieldEnglishName:   GroupIdentity,
	FieldDrugCode:      GroupIdentity,
	FieldFormulation:   GroupIdentity,
	FieldCategory:      GroupClassification,
	FieldCompany:       GroupClassification,
	FieldAppearance:    GroupDescriptive,
	FieldIngredients:   GroupDescriptive,
	FieldEfficacy:      GroupClinical,
	FieldDosage:        GroupClinical,
	FieldPrecautions:   GroupClinical,
	FieldSideEffects:   GroupClinical,
	FieldInteractions:  GroupClinical,
	FieldStorageMethod: GroupClinical,
	FieldPregnancyInfo: GroupPopulation,
	FieldChildrenInfo:  GroupPopulation,
	FieldElderlyInfo:   GroupPopulation,
	FieldImageURL:      GroupMedia,
	FieldReferenceURLs: GroupMedia,
	FieldLastUpdated:   GroupMedia,
}

// GroupOf returns the semantic group a field belongs to.
// Returns the empty group for unrecognized fields.
func GroupOf(f Field) FieldGroup {
	return fieldGroups[f]
}

// Groups returns the field groups in schema order, without duplicates.
func Groups() []FieldGroup {
	seen := make(map[FieldGroup]bool, 6)
	out := make([]FieldGroup, 0, 6)
	for _, f := range schema {
		g := fieldGroups[f]
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}

// DefaultValidationFields returns the fields compared when no explicit
// list is given: the core identity, classification, and clinical fields
// that a usable entry is expected to carry.
func DefaultValidationFields() []Field {
	return []Field{
		FieldKoreanName,
		FieldEnglishName,
		FieldCompany,
		FieldIngredients,
		FieldEfficacy,
		FieldDosage,
		FieldPrecautions,
		FieldCategory,
		FieldFormulation,
		FieldAppearance,
	}
}
