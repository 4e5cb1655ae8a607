package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/meddict"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ meddict.MedicineService = (*MedicineService)(nil)

// MedicineService implements meddict.MedicineService using SQLite.
type MedicineService struct {
	db *DB
}

// NewMedicineService creates a new MedicineService.
func NewMedicineService(db *DB) *MedicineService {
	return &MedicineService{db: db}
}

// medicineColumns is the canonical column list shared by every SELECT so
// scanMedicine stays in sync with one place.
const medicineColumns = `id, url, doc_id,
	korean_name, english_name, drug_code, formulation, category, company,
	appearance, ingredients, efficacy, dosage, precautions, side_effects,
	interactions, storage_method, pregnancy_info, children_info, elderly_info,
	image_url, reference_urls, last_updated,
	raw_html, data_hash, completeness, image_path, created_at, updated_at`

// CreateMedicine creates a new medicine entry.
func (s *MedicineService) CreateMedicine(ctx context.Context, m *meddict.Medicine) error {
	if err := m.Validate(); err != nil {
		return err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM medicines WHERE url = ?", m.URL).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return meddict.Errorf(meddict.ECONFLICT, "medicine already exists for URL %s", m.URL)
	}

	m.ID = uuid.New().String()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	ingredients, err := marshalStrings(m.Record.Ingredients)
	if err != nil {
		return err
	}
	referenceURLs, err := marshalStrings(m.Record.ReferenceURLs)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO medicines (`+medicineColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.URL, m.DocID,
		m.Record.KoreanName, m.Record.EnglishName, m.Record.DrugCode, m.Record.Formulation,
		m.Record.Category, m.Record.Company, m.Record.Appearance, ingredients,
		m.Record.Efficacy, m.Record.Dosage, m.Record.Precautions, m.Record.SideEffects,
		m.Record.Interactions, m.Record.StorageMethod, m.Record.PregnancyInfo,
		m.Record.ChildrenInfo, m.Record.ElderlyInfo, m.Record.ImageURL, referenceURLs,
		m.Record.LastUpdated,
		m.RawHTML, m.DataHash, m.Completeness, m.ImagePath,
		m.CreatedAt.Format(time.RFC3339), m.UpdatedAt.Format(time.RFC3339))

	return err
}

// FindMedicineByID retrieves a medicine by ID.
func (s *MedicineService) FindMedicineByID(ctx context.Context, id string) (*meddict.Medicine, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE id = ?`, id)
	m, err := scanMedicine(row)
	if err == sql.ErrNoRows {
		return nil, meddict.Errorf(meddict.ENOTFOUND, "medicine not found")
	}
	return m, err
}

// FindMedicineByURL retrieves a medicine by its entry URL.
func (s *MedicineService) FindMedicineByURL(ctx context.Context, url string) (*meddict.Medicine, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE url = ?`, url)
	m, err := scanMedicine(row)
	if err == sql.ErrNoRows {
		return nil, meddict.Errorf(meddict.ENOTFOUND, "medicine not found for URL %s", url)
	}
	return m, err
}

// FindMedicines retrieves medicines matching the filter, newest first.
// Also returns the total number of matching entries ignoring pagination.
func (s *MedicineService) FindMedicines(ctx context.Context, filter meddict.MedicineFilter) ([]*meddict.Medicine, int, error) {
	where, args := buildMedicineWhere(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM medicines"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	var query strings.Builder
	query.WriteString(`SELECT ` + medicineColumns + ` FROM medicines`)
	query.WriteString(where)
	query.WriteString(" ORDER BY created_at DESC, id")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var medicines []*meddict.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, 0, err
		}
		medicines = append(medicines, m)
	}

	return medicines, total, rows.Err()
}

// CountMedicines returns the total number of stored medicines.
func (s *MedicineService) CountMedicines(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM medicines").Scan(&n)
	return n, err
}

// UpdateMedicine updates an existing medicine entry.
func (s *MedicineService) UpdateMedicine(ctx context.Context, id string, upd meddict.MedicineUpdate) (*meddict.Medicine, error) {
	// First check if the medicine exists
	m, err := s.FindMedicineByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Apply updates
	if upd.Record != nil {
		m.Record = *upd.Record
	}
	if upd.RawHTML != nil {
		m.RawHTML = *upd.RawHTML
	}
	if upd.DataHash != nil {
		m.DataHash = *upd.DataHash
	}
	if upd.Completeness != nil {
		m.Completeness = *upd.Completeness
	}
	if upd.ImagePath != nil {
		m.ImagePath = *upd.ImagePath
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	m.UpdatedAt = time.Now().UTC()

	ingredients, err := marshalStrings(m.Record.Ingredients)
	if err != nil {
		return nil, err
	}
	referenceURLs, err := marshalStrings(m.Record.ReferenceURLs)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE medicines
		SET korean_name = ?, english_name = ?, drug_code = ?, formulation = ?,
			category = ?, company = ?, appearance = ?, ingredients = ?,
			efficacy = ?, dosage = ?, precautions = ?, side_effects = ?,
			interactions = ?, storage_method = ?, pregnancy_info = ?,
			children_info = ?, elderly_info = ?, image_url = ?,
			reference_urls = ?, last_updated = ?,
			raw_html = ?, data_hash = ?, completeness = ?, image_path = ?, updated_at = ?
		WHERE id = ?
	`, m.Record.KoreanName, m.Record.EnglishName, m.Record.DrugCode, m.Record.Formulation,
		m.Record.Category, m.Record.Company, m.Record.Appearance, ingredients,
		m.Record.Efficacy, m.Record.Dosage, m.Record.Precautions, m.Record.SideEffects,
		m.Record.Interactions, m.Record.StorageMethod, m.Record.PregnancyInfo,
		m.Record.ChildrenInfo, m.Record.ElderlyInfo, m.Record.ImageURL, referenceURLs,
		m.Record.LastUpdated,
		m.RawHTML, m.DataHash, m.Completeness, m.ImagePath,
		m.UpdatedAt.Format(time.RFC3339), id)

	if err != nil {
		return nil, err
	}

	return m, nil
}

// DeleteMedicine permanently removes a medicine entry.
func (s *MedicineService) DeleteMedicine(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM medicines WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return meddict.Errorf(meddict.ENOTFOUND, "medicine not found")
	}

	return nil
}

// buildMedicineWhere renders the filter into a WHERE clause and its args.
// Name matches the Korean or English name as a substring.
func buildMedicineWhere(filter meddict.MedicineFilter) (string, []any) {
	var where strings.Builder
	var args []any

	where.WriteString(" WHERE 1=1")

	if filter.ID != nil {
		where.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.URL != nil {
		where.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Name != nil {
		where.WriteString(" AND (korean_name LIKE ? OR english_name LIKE ?)")
		pattern := "%" + *filter.Name + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Category != nil {
		where.WriteString(" AND category = ?")
		args = append(args, *filter.Category)
	}
	if filter.Company != nil {
		where.WriteString(" AND company = ?")
		args = append(args, *filter.Company)
	}
	if filter.MinCompleteness != nil {
		where.WriteString(" AND completeness >= ?")
		args = append(args, *filter.MinCompleteness)
	}

	return where.String(), args
}

// scanner abstracts sql.Row and sql.Rows for scanMedicine.
type scanner interface {
	Scan(dest ...any) error
}

// scanMedicine reads one medicines row in medicineColumns order.
func scanMedicine(row scanner) (*meddict.Medicine, error) {
	var m meddict.Medicine
	var ingredients, referenceURLs string
	var createdAt, updatedAt string

	err := row.Scan(&m.ID, &m.URL, &m.DocID,
		&m.Record.KoreanName, &m.Record.EnglishName, &m.Record.DrugCode, &m.Record.Formulation,
		&m.Record.Category, &m.Record.Company, &m.Record.Appearance, &ingredients,
		&m.Record.Efficacy, &m.Record.Dosage, &m.Record.Precautions, &m.Record.SideEffects,
		&m.Record.Interactions, &m.Record.StorageMethod, &m.Record.PregnancyInfo,
		&m.Record.ChildrenInfo, &m.Record.ElderlyInfo, &m.Record.ImageURL, &referenceURLs,
		&m.Record.LastUpdated,
		&m.RawHTML, &m.DataHash, &m.Completeness, &m.ImagePath, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if m.Record.Ingredients, err = unmarshalStrings(ingredients, "ingredients"); err != nil {
		return nil, err
	}
	if m.Record.ReferenceURLs, err = unmarshalStrings(referenceURLs, "reference_urls"); err != nil {
		return nil, err
	}
	if m.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &m, nil
}
