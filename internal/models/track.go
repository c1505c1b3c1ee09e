package models

import (
	"gorm.io/gorm"
)

type Track struct {
	gorm.Model
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Sessions    []Session `json:"sessions"`
}
