package models

import (
	"time"

	"gorm.io/gorm"
)

// MechanicProfile carries a mechanic's qualifications and the cumulative
// score the assignment engine uses as its workload signal. Score is mutated
// only through atomic SQL increments inside validation transactions.
type MechanicProfile struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	UserID           uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	CanPickupDrop    bool           `json:"can_pickup_drop" gorm:"default:false"`
	CanAnalyse       bool           `json:"can_analyse" gorm:"default:false"`
	SkillCategoryIDs IDList         `json:"skill_category_ids" gorm:"type:text"`
	Score            int            `json:"score" gorm:"default:0"`
	Assigned         bool           `json:"assigned" gorm:"default:false"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (MechanicProfile) TableName() string {
	return "mechanic_profiles"
}

// QualifiedFor reports whether the mechanic can take the given stage. The
// service stage has no capability flag; skill coverage is a scoring feature,
// not a hard filter.
func (m *MechanicProfile) QualifiedFor(t AssignmentType) bool {
	switch t {
	case AssignmentTypePickup, AssignmentTypeDrop:
		return m.CanPickupDrop
	case AssignmentTypeAnalysis:
		return m.CanAnalyse
	default:
		return true
	}
}
