package model

import "strings"

// Category groups shopping list items by shop aisle.
type Category string

const (
	CategoryFruits     Category = "Fruits"
	CategoryVegetables Category = "Légumes"
	CategoryBakery     Category = "Boulangerie"
	CategoryGrocery    Category = "Épicerie"
	CategoryDrinks     Category = "Boissons"
	CategoryButcher    Category = "Boucherie"
	CategoryOther      Category = "Autres"
)

// Categories lists the known categories in display order.
var Categories = []Category{
	CategoryFruits,
	CategoryVegetables,
	CategoryBakery,
	CategoryGrocery,
	CategoryDrinks,
	CategoryButcher,
	CategoryOther,
}

// ParseCategory matches name case-insensitively against the known
// categories and falls back to CategoryOther.
func ParseCategory(name string) Category {
	name = strings.TrimSpace(name)
	for _, c := range Categories {
		if strings.EqualFold(string(c), name) {
			return c
		}
	}
	return CategoryOther
}

// CourseItem is an entry of the shared shopping list.
type CourseItem struct {
	ID       uint     `json:"id"`
	Title    string   `json:"title"`
	Quantity string   `json:"quantity"`
	Category Category `json:"category"`
	Note     string   `json:"note"`
	Bought   bool     `json:"bought"`
}
