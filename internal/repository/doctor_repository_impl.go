package repository

import (
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/taherx7/Medi-connect/internal/domain/entity"
	domainRepo "github.com/taherx7/Medi-connect/internal/domain/repository"
	"gorm.io/gorm"
)

type doctorRepository struct{}

func NewDoctorRepository() domainRepo.DoctorRepository {
	return &doctorRepository{}
}

func (r *doctorRepository) Create(db *gorm.DB, doctor *entity.Doctor) error {
	return db.Create(doctor).Error
}

func (r *doctorRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.Where("id = ?", id).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindByEmail(db *gorm.DB, email string) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.Where("email = ?", email).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(db *gorm.DB, doctor *entity.Doctor) error {
	return db.Omit("Reservations", "BlockedSlots").Save(doctor).Error
}

func (r *doctorRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Doctor{})
	return result.RowsAffected, result.Error
}

// Search applies every non-empty filter field as a case-insensitive
// substring match; fields combine with AND.
func (r *doctorRepository) Search(db *gorm.DB, filter entity.DoctorFilter) ([]entity.Doctor, error) {
	query := db.Model(&entity.Doctor{})

	predicate, args, err := doctorPredicate(filter)
	if err != nil {
		return nil, err
	}
	if predicate != "" {
		query = query.Where(predicate, args...)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var doctors []entity.Doctor
	if err := query.Order("name ASC").Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) FindTop(db *gorm.DB, limit int) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	err := db.Order("created_at ASC").Limit(limit).Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&entity.Doctor{}).Count(&count).Error
	return count, err
}

func doctorPredicate(filter entity.DoctorFilter) (string, []interface{}, error) {
	conditions := sq.And{}
	if filter.Name != "" {
		conditions = append(conditions, sq.ILike{"name": contains(filter.Name)})
	}
	if filter.Location != "" {
		conditions = append(conditions, sq.ILike{"location": contains(filter.Location)})
	}
	if filter.Query != "" {
		pattern := contains(filter.Query)
		conditions = append(conditions, sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"location": pattern},
		})
	}
	if len(conditions) == 0 {
		return "", nil, nil
	}
	return conditions.ToSql()
}

func contains(term string) string {
	return "%" + term + "%"
}
