package ui

import "github.com/fatih/color"

// GetColor returns a color that prints plain text when noColor is set and
// ignores the package wide color.NoColor detection otherwise.
func GetColor(noColor bool, attributes ...color.Attribute) *color.Color {
	if noColor {
		c := color.New()
		c.DisableColor()
		return c
	}

	c := color.New(attributes...)
	c.EnableColor()
	return c
}
