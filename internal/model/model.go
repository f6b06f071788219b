package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Document{},
	&Version{},
}

// Collection names discriminate what a document row holds.
const (
	CollectionPlans         = "plans"
	CollectionSubcomponents = "subComponents"
	CollectionFuncs         = "funcs"
	CollectionModes         = "modes"
)

// Collections lists every valid collection name.
var Collections = []string{
	CollectionPlans,
	CollectionSubcomponents,
	CollectionFuncs,
	CollectionModes,
}

// ValidCollection reports whether name is a known collection.
func ValidCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

// SplitPath splits a "collection/id" repository path.
func SplitPath(path string) (collection, id string, ok bool) {
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || !ValidCollection(parts[0]) || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Document is one repository entry: a plan, subcomponent, func or mode.
// The payload itself lives in the versions table; the row carries the
// denormalized listing fields.
type Document struct {
	ID          string         `json:"id" gorm:"primaryKey;size:26"`
	Collection  string         `json:"collection" gorm:"size:32;index:idx_documents_collection"`
	Type        string         `json:"type" gorm:"size:64"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Name        string         `json:"name" gorm:"size:255"`
	Description string         `json:"description" gorm:"size:2047"`
	Tags        datatypes.JSON `json:"tags"`
	Created     time.Time      `json:"created"`
	Updated     time.Time      `json:"updated"`
	Touched     time.Time      `json:"touched" gorm:"index:idx_documents_touched"`
	Details     datatypes.JSON `json:"details"`
	Copies      uint           `json:"copies"`
	Includes    uint           `json:"includes"`
	CopiedFrom  *string        `json:"copiedFrom,omitempty" gorm:"size:26"`
	Versions    []Version      `json:"-" gorm:"foreignKey:DocumentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Document) TableName() string {
	return "documents"
}

// Path is the repository path of the document, "collection/id".
func (d Document) Path() string {
	return d.Collection + "/" + d.ID
}

// Version is one saved state of a document's content. Locked versions are
// frozen; edits against them must branch or explicitly continue.
type Version struct {
	ID         string     `json:"id" gorm:"primaryKey;size:26"`
	DocumentID string     `json:"documentId" gorm:"size:26;index:idx_versions_document_id"`
	Created    time.Time  `json:"created"`
	Updated    time.Time  `json:"updated"`
	Delta      string     `json:"delta,omitempty" gorm:"size:36"`
	Locked     *time.Time `json:"locked,omitempty"`
	Content    string     `json:"content"`
}

func (Version) TableName() string {
	return "versions"
}

// IsLocked reports whether the version is frozen.
func (v Version) IsLocked() bool {
	return v.Locked != nil
}
