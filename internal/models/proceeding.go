package models

import (
	"gorm.io/gorm"
)

type Proceeding struct {
	gorm.Model
	Title    string `json:"title"`
	FileName string `json:"file_name"`
	Path     string `json:"-"`
}
