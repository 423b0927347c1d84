package domain

import "strings"

// Category is a user-defined named, colored grouping for todos.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// NewCategory constructs a validated category.
func NewCategory(id, name string, color Color) (Category, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Category{}, ErrInvalidID
	}
	name, color, err := normalizeCategoryFields(name, color)
	if err != nil {
		return Category{}, err
	}
	return Category{
		ID:    id,
		Name:  name,
		Color: color,
	}, nil
}

// Update replaces name and color, keeping the id.
func (c *Category) Update(name string, color Color) error {
	name, color, err := normalizeCategoryFields(name, color)
	if err != nil {
		return err
	}
	c.Name = name
	c.Color = color
	return nil
}

func normalizeCategoryFields(name string, color Color) (string, Color, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", ErrInvalidName
	}
	color = NormalizeColor(color)
	if color == "" || !IsPaletteColor(color) {
		return "", "", ErrInvalidColor
	}
	return name, color, nil
}
