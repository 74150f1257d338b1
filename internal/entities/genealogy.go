package entities

import (
	"time"

	"gorm.io/gorm"
)

type Sex string

const (
	SexMale    Sex = "M"
	SexFemale  Sex = "F"
	SexUnknown Sex = "U"
)

// Tree is the destination of one or more imports. Every imported entity
// carries its TreeID; nothing is shared across trees.
type Tree struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"index;size:256" json:"name"`
	Description string         `gorm:"size:1024" json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Individual is one person record. Dates are stored three ways because the
// source text may not denote a single calendar day at all ("ABT 1850"):
// the raw annotated text, a best-effort calendar date, and the bare year.
type Individual struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	TreeID uint   `gorm:"index:idx_individual_tree_xref,unique" json:"tree_id"`
	Xref   string `gorm:"index:idx_individual_tree_xref,unique;size:32" json:"xref"`

	GivenName string `gorm:"index;size:256" json:"given_name"`
	Surname   string `gorm:"index;size:256" json:"surname"`
	Sex       Sex    `gorm:"size:1;default:'U'" json:"sex"`

	BirthDate    *time.Time `json:"birth_date,omitempty"`
	BirthDateRaw string     `gorm:"size:64" json:"birth_date_raw,omitempty"`
	BirthYear    int        `gorm:"index" json:"birth_year,omitempty"`
	BirthPlace   string     `gorm:"size:256" json:"birth_place,omitempty"`

	DeathDate    *time.Time `json:"death_date,omitempty"`
	DeathDateRaw string     `gorm:"size:64" json:"death_date_raw,omitempty"`
	DeathYear    int        `json:"death_year,omitempty"`
	DeathPlace   string     `gorm:"size:256" json:"death_place,omitempty"`
	DeathCause   string     `gorm:"size:256" json:"death_cause,omitempty"`

	BurialPlace string `gorm:"size:256" json:"burial_place,omitempty"`
	Occupation  string `gorm:"size:256" json:"occupation,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Family links spouses and children. Spouse IDs are nullable: a family whose
// spouse xref never resolved is still persisted with its marriage fields.
type Family struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	TreeID uint   `gorm:"index:idx_family_tree_xref,unique" json:"tree_id"`
	Xref   string `gorm:"index:idx_family_tree_xref,unique;size:32" json:"xref"`

	HusbandID *uint `gorm:"index" json:"husband_id,omitempty"`
	WifeID    *uint `gorm:"index" json:"wife_id,omitempty"`

	MarriageDate    *time.Time `json:"marriage_date,omitempty"`
	MarriageDateRaw string     `gorm:"size:64" json:"marriage_date_raw,omitempty"`
	MarriageYear    int        `json:"marriage_year,omitempty"`
	MarriagePlace   string     `gorm:"size:256" json:"marriage_place,omitempty"`

	DivorceDate    *time.Time `json:"divorce_date,omitempty"`
	DivorceDateRaw string     `gorm:"size:64" json:"divorce_date_raw,omitempty"`
	DivorceYear    int        `json:"divorce_year,omitempty"`
	DivorcePlace   string     `gorm:"size:256" json:"divorce_place,omitempty"`

	Children []FamilyChild `gorm:"foreignKey:FamilyID" json:"children,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// FamilyChild joins a family to one child, ordered as the source listed them.
type FamilyChild struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	FamilyID     uint `gorm:"index" json:"family_id"`
	IndividualID uint `gorm:"index" json:"individual_id"`
	Position     int  `json:"position"`
}

// SourceRecord is a cited genealogical source (register, census, book).
type SourceRecord struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	TreeID uint   `gorm:"index:idx_source_tree_xref,unique" json:"tree_id"`
	Xref   string `gorm:"index:idx_source_tree_xref,unique;size:32" json:"xref"`

	Title       string `gorm:"size:512" json:"title"`
	Author      string `gorm:"size:256" json:"author,omitempty"`
	Publication string `gorm:"size:512" json:"publication,omitempty"`
	Repository  string `gorm:"size:256" json:"repository,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteRecord is a free-text note attached at the file level.
type NoteRecord struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	TreeID uint   `gorm:"index:idx_note_tree_xref,unique" json:"tree_id"`
	Xref   string `gorm:"index:idx_note_tree_xref,unique;size:32" json:"xref"`
	Text   string `gorm:"type:text" json:"text"`

	CreatedAt time.Time `json:"created_at"`
}

// MediaObject references an external media file.
type MediaObject struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	TreeID uint   `gorm:"index:idx_media_tree_xref,unique" json:"tree_id"`
	Xref   string `gorm:"index:idx_media_tree_xref,unique;size:32" json:"xref"`

	FilePath string `gorm:"size:1024" json:"file_path"`
	Format   string `gorm:"size:16" json:"format,omitempty"`
	Title    string `gorm:"size:512" json:"title,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
