package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrCategoryCycle is returned when a parent link would make a category its
// own ancestor.
var ErrCategoryCycle = errors.New("category parent would create a cycle")

// Category groups products. Categories form a forest through ParentID.
type Category struct {
	Base
	Name        string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Slug        string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Image       string    `gorm:"size:500" json:"image,omitempty"`
	ParentID    *uint     `gorm:"index" json:"parentId,omitempty"`
	Parent      *Category `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
}

// BeforeSave keeps Slug derived from Name.
func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Slug = Slugify(c.Name)
	return nil
}

// Slugify lowercases name, collapses every run of characters outside
// [a-z0-9] into a single "-" and trims dashes from both ends.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// ValidateCategoryParent checks that linking id under parentID keeps the
// tree acyclic. parents maps every known category id to its parent id, with
// 0 meaning a root. A parentID of 0 always passes.
func ValidateCategoryParent(parents map[uint]uint, id, parentID uint) error {
	if parentID == 0 {
		return nil
	}
	if parentID == id {
		return ErrCategoryCycle
	}

	// The walk is bounded by the arena size so corrupt data cannot spin forever.
	cur := parentID
	for steps := 0; cur != 0 && steps <= len(parents); steps++ {
		if cur == id {
			return ErrCategoryCycle
		}
		cur = parents[cur]
	}
	if cur != 0 {
		return ErrCategoryCycle
	}
	return nil
}
