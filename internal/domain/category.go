package domain

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var colorHexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Category is a content topic podcasts are generated for.
type Category struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	DisplayNameEN string    `db:"display_name_en"`
	DisplayNameTR string    `db:"display_name_tr"`
	DescriptionEN string    `db:"description_en"`
	DescriptionTR string    `db:"description_tr"`
	IconURL       string    `db:"icon_url"`
	ColorHex      string    `db:"color_hex"`
	IsActive      bool      `db:"is_active"`
	SortOrder     int       `db:"sort_order"`
	CreatedAt     time.Time `db:"created_at"`
}

// CreateCategoryParams carries the fields for a new category.
type CreateCategoryParams struct {
	Name          string
	DisplayNameEN string
	DisplayNameTR string
	DescriptionEN string
	DescriptionTR string
	IconURL       string
	ColorHex      string
	SortOrder     int
}

// Validate applies the category validation rules.
func (p *CreateCategoryParams) Validate() error {
	// Lengths count characters, not bytes; Turkish text is multi-byte.
	if n := utf8.RuneCountInString(p.Name); n < 3 || n > 50 {
		return &ValidationError{Field: "name", Rule: "be between 3 and 50 characters"}
	}
	if n := utf8.RuneCountInString(p.DisplayNameEN); n < 3 || n > 100 {
		return &ValidationError{Field: "display_name_en", Rule: "be between 3 and 100 characters"}
	}
	if n := utf8.RuneCountInString(p.DisplayNameTR); n < 3 || n > 100 {
		return &ValidationError{Field: "display_name_tr", Rule: "be between 3 and 100 characters"}
	}
	if !colorHexPattern.MatchString(p.ColorHex) {
		return &ValidationError{Field: "color_hex", Rule: "match #RRGGBB"}
	}
	return nil
}

// NewCategory validates params and builds an active category.
func NewCategory(params CreateCategoryParams) (*Category, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Category{
		ID:            uuid.New().String(),
		Name:          params.Name,
		DisplayNameEN: params.DisplayNameEN,
		DisplayNameTR: params.DisplayNameTR,
		DescriptionEN: params.DescriptionEN,
		DescriptionTR: params.DescriptionTR,
		IconURL:       params.IconURL,
		ColorHex:      params.ColorHex,
		IsActive:      true,
		SortOrder:     params.SortOrder,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// DisplayName returns the localized display name.
func (c *Category) DisplayName(language Language) string {
	if language == LanguageTR {
		return c.DisplayNameTR
	}
	return c.DisplayNameEN
}

// Description returns the localized description.
func (c *Category) Description(language Language) string {
	if language == LanguageTR {
		return c.DescriptionTR
	}
	return c.DescriptionEN
}
