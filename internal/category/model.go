package category

import (
	"gorm.io/gorm"
)

// Category groups books on the shelf plan.
type Category struct {
	gorm.Model
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}
