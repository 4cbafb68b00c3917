package product

// SeedProducts returns the sample catalog used by the dev seed endpoint.
func SeedProducts() []Product {
	now := nowRFC3339()
	discounted := func(v float64) *float64 { return &v }

	products := []Product{
		{
			Name:          "Nordmark 3-Seater Sofa",
			Description:   "Three-seater sofa with washable linen covers and solid birch legs.",
			Price:         899,
			OriginalPrice: discounted(1049),
			Category:      "sofa",
			Brand:         "Nordmark",
			Material:      "linen",
			Color:         "grey",
			CountInStock:  8,
			Featured:      true,
			Images:        []string{"/images/nordmark-sofa.jpg"},
		},
		{
			Name:         "Haven Queen Bed Frame",
			Description:  "Queen-size bed frame in solid oak with a slatted base.",
			Price:        649,
			Category:     "bed",
			Brand:        "Haven",
			Material:     "oak",
			Color:        "natural",
			CountInStock: 5,
			Featured:     true,
			Images:       []string{"/images/haven-bed.jpg"},
		},
		{
			Name:         "Lumen Walnut Dining Table",
			Description:  "Extendable dining table in walnut veneer, seats six to eight.",
			Price:        520,
			Category:     "table",
			Brand:        "Lumen",
			Material:     "walnut",
			Color:        "brown",
			CountInStock: 12,
			Images:       []string{"/images/lumen-table.jpg"},
		},
		{
			Name:         "Arc Dining Chair",
			Description:  "Stackable dining chair with a moulded ash seat and steel frame.",
			Price:        89,
			Category:     "chair",
			Brand:        "Arc",
			Material:     "ash",
			Color:        "black",
			CountInStock: 40,
			Featured:     true,
			Images:       []string{"/images/arc-chair.jpg"},
		},
		{
			Name:          "Vault Sideboard Cabinet",
			Description:   "Low sideboard with two sliding doors and adjustable shelves.",
			Price:         340,
			OriginalPrice: discounted(399),
			Category:      "cabinet",
			Brand:         "Vault",
			Material:      "pine",
			Color:         "white",
			CountInStock:  7,
			Images:        []string{"/images/vault-cabinet.jpg"},
		},
		{
			Name:         "Focus Standing Desk",
			Description:  "Height-adjustable desk with a bamboo top and dual motors.",
			Price:        459,
			Category:     "desk",
			Brand:        "Focus",
			Material:     "bamboo",
			Color:        "natural",
			CountInStock: 15,
			Featured:     true,
			Images:       []string{"/images/focus-desk.jpg"},
		},
		{
			Name:         "Corda Floor Lamp",
			Description:  "Floor lamp with a rattan shade and dimmable warm light.",
			Price:        75,
			Category:     "other",
			Brand:        "Corda",
			Material:     "rattan",
			Color:        "natural",
			CountInStock: 25,
			Images:       []string{"/images/corda-lamp.jpg"},
		},
	}

	for i := range products {
		products[i].IsAvailable = true
		products[i].Reviews = []Review{}
		products[i].CreatedAt = now
		products[i].UpdatedAt = now
	}
	return products
}
