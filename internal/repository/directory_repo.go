package repository

import (
	"association-backoffice/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DirectoryRepository reads the resident/vendor reference data. The engine
// never writes through it.
type DirectoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) GetResident(id uuid.UUID) (*models.Resident, error) {
	var resident models.Resident
	if err := r.db.First(&resident, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &resident, nil
}

func (r *DirectoryRepository) GetVendor(id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.First(&vendor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// ActiveResidents is the snapshot preview sessions render override choices
// from.
func (r *DirectoryRepository) ActiveResidents() ([]models.Resident, error) {
	var residents []models.Resident
	err := r.db.Where("active = ?", true).Order("display_name ASC").Find(&residents).Error
	return residents, err
}
