package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rohits-web03/studentvault/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("student not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// StudentRepository stores ciphertext records. It never sees plaintext PII
// and does no cryptography of its own.
type StudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

func (r *StudentRepository) first(ctx context.Context, query string, arg any) (*models.Student, error) {
	var s models.Student
	err := r.db.WithContext(ctx).Where(query, arg).First(&s).Error
	switch {
	case err == nil:
		return &s, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("find student: %w", err)
	}
}

func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *StudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	var out []models.Student
	if err := r.db.WithContext(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return out, nil
}

// Update writes only the given columns. Last write wins; there is no
// optimistic locking.
func (r *StudentRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		_, err := r.FindByID(ctx, id)
		return err
	}
	res := r.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Updates(fields)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	if res.Error != nil {
		return fmt.Errorf("update student: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StudentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Student{})
	if res.Error != nil {
		return fmt.Errorf("delete student: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
