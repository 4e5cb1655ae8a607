package mock

import (
	"context"

	"github.com/fwojciec/meddict"
)

var _ meddict.MedicineService = (*MedicineService)(nil)

// MedicineService is a mock implementation of meddict.MedicineService.
type MedicineService struct {
	CreateMedicineFn    func(ctx context.Context, m *meddict.Medicine) error
	FindMedicineByIDFn  func(ctx context.Context, id string) (*meddict.Medicine, error)
	FindMedicineByURLFn func(ctx context.Context, url string) (*meddict.Medicine, error)
	FindMedicinesFn     func(ctx context.Context, filter meddict.MedicineFilter) ([]*meddict.Medicine, int, error)
	CountMedicinesFn    func(ctx context.Context) (int, error)
	UpdateMedicineFn    func(ctx context.Context, id string, upd meddict.MedicineUpdate) (*meddict.Medicine, error)
	DeleteMedicineFn    func(ctx context.Context, id string) error
}

func (s *MedicineService) CreateMedicine(ctx context.Context, m *meddict.Medicine) error {
	return s.CreateMedicineFn(ctx, m)
}

func (s *MedicineService) FindMedicineByID(ctx context.Context, id string) (*meddict.Medicine, error) {
	return s.FindMedicineByIDFn(ctx, id)
}

func (s *MedicineService) FindMedicineByURL(ctx context.Context, url string) (*meddict.Medicine, error) {
	return s.FindMedicineByURLFn(ctx, url)
}

func (s *MedicineService) FindMedicines(ctx context.Context, filter meddict.MedicineFilter) ([]*meddict.Medicine, int, error) {
	return s.FindMedicinesFn(ctx, filter)
}

func (s *MedicineService) CountMedicines(ctx context.Context) (int, error) {
	return s.CountMedicinesFn(ctx)
}

func (s *MedicineService) UpdateMedicine(ctx context.Context, id string, upd meddict.MedicineUpdate) (*meddict.Medicine, error) {
	return s.UpdateMedicineFn(ctx, id, upd)
}

func (s *MedicineService) DeleteMedicine(ctx context.Context, id string) error {
	return s.DeleteMedicineFn(ctx, id)
}
