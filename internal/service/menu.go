package service

import "github.com/rryowa/foodcombo/internal/models"

var menu = []models.Card{
	{
		ID:          1,
		Title:       "Classic Combo",
		Description: "Cheeseburger, fries and a soft drink",
		Price:       450,
		Image:       "/images/classic-combo.jpg",
		Category:    "combo",
	},
	{
		ID:          2,
		Title:       "Chicken Combo",
		Description: "Crispy chicken burger, fries and a soft drink",
		Price:       490,
		Image:       "/images/chicken-combo.jpg",
		Category:    "combo",
	},
	{
		ID:          3,
		Title:       "Veggie Combo",
		Description: "Veggie burger, salad and lemonade",
		Price:       420,
		Image:       "/images/veggie-combo.jpg",
		Category:    "combo",
	},
	{
		ID:          4,
		Title:       "Double Burger",
		Description: "Two beef patties, cheddar and pickles",
		Price:       390,
		Image:       "/images/double-burger.jpg",
		Category:    "burger",
	},
	{
		ID:          5,
		Title:       "French Fries",
		Description: "Large portion with sauce of your choice",
		Price:       150,
		Image:       "/images/fries.jpg",
		Category:    "snack",
	},
	{
		ID:          6,
		Title:       "Lemonade",
		Description: "Homemade lemonade, 0.5 l",
		Price:       120,
		Image:       "/images/lemonade.jpg",
		Category:    "drink",
	},
}

type MenuService struct{}

func NewMenuService() *MenuService { return &MenuService{} }

// Menu returns a copy of the static card list.
func (MenuService) Menu() []models.Card {
	return append([]models.Card(nil), menu...)
}
