package catalog

import "context"

// Seed loads a starter set of chefs and recipes into an empty catalog.
// Anything already stored is left untouched so repeated startups are
// idempotent
func (s *Store) Seed(ctx context.Context) error {
	count, err := s.rdb.HLen(ctx, s.key(recipesKey)).Result()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, c := range seedChefs {
		if err := s.SaveChef(ctx, &c); err != nil {
			return err
		}
	}
	for _, r := range seedRecipes {
		if err := s.SaveRecipe(ctx, &r); err != nil {
			return err
		}
	}
	return nil
}

var seedChefs = []Chef{
	{Name: "Maria Rossi", Specialization: "italian", Rating: 4.8},
	{Name: "Luca Moretti", Specialization: "italian", Rating: 4.3},
	{Name: "Sofia Hernandez", Specialization: "mexican", Rating: 4.6},
	{Name: "Kenji Watanabe", Specialization: "japanese", Rating: 4.9},
	{Name: "Priya Sharma", Specialization: "indian", Rating: 4.7},
	{Name: "Claire Dubois", Specialization: "french", Rating: 4.4},
	{Name: "Elena Papadopoulos", Specialization: "mediterranean", Rating: 4.5},
	{Name: "Anong Srisuwan", Specialization: "thai", Rating: 4.2},
}

var seedRecipes = []Recipe{
	{
		Name:           "Grilled Vegetable Polenta",
		Description:    "crisp polenta cakes under charred seasonal vegetables",
		Specialization: "italian",
		ProteinType:    "plant",
		Utensils:       []string{"grill", "saucepan"},
		Ingredients:    []string{"polenta", "zucchini", "bell pepper", "olive oil"},
		TimeToCook:     45,
		Servings:       8,
		Vegan:          true,
		Vegetarian:     true,
		GlutenFree:     true,
		DairyFree:      true,
	},
	{
		Name:           "Margherita Flatbread",
		Description:    "blistered flatbread with tomato, mozzarella, and basil",
		Specialization: "italian",
		ProteinType:    "dairy",
		Utensils:       []string{"pizza stone", "peel"},
		Ingredients:    []string{"flour", "tomato", "mozzarella", "basil"},
		Allergens:      []string{"gluten", "dairy"},
		TimeToCook:     30,
		Servings:       6,
		Vegetarian:     true,
	},
	{
		Name:           "Chickpea Tagine",
		Description:    "slow-simmered chickpeas with tomato and warm spices",
		Specialization: "mediterranean",
		ProteinType:    "plant",
		Utensils:       []string{"tagine", "ladle"},
		Ingredients:    []string{"chickpeas", "tomato", "carrot", "rice"},
		TimeToCook:     70,
		Servings:       10,
		Vegan:          true,
		Vegetarian:     true,
		GlutenFree:     true,
		DairyFree:      true,
	},
	{
		Name:           "Miso Glazed Salmon",
		Description:    "broiled salmon lacquered with sweet miso",
		Specialization: "japanese",
		ProteinType:    "fish",
		Utensils:       []string{"broiler pan", "basting brush"},
		Ingredients:    []string{"salmon", "miso paste", "mirin"},
		Allergens:      []string{"fish", "soy"},
		TimeToCook:     25,
		Servings:       4,
		DairyFree:      true,
	},
	{
		Name:           "Vegetable Sushi Rolls",
		Description:    "nori rolls of seasoned rice, cucumber, and avocado",
		Specialization: "japanese",
		ProteinType:    "plant",
		Utensils:       []string{"rolling mat", "rice paddle"},
		Ingredients:    []string{"rice", "nori", "cucumber", "avocado", "soy sauce"},
		Allergens:      []string{"soy"},
		TimeToCook:     40,
		Servings:       6,
		Vegan:          true,
		Vegetarian:     true,
		GlutenFree:     true,
		DairyFree:      true,
	},
	{
		Name:           "Paneer Tikka Skewers",
		Description:    "charred paneer marinated in yogurt and spices",
		Specialization: "indian",
		ProteinType:    "dairy",
		Utensils:       []string{"skewers", "tandoor"},
		Ingredients:    []string{"paneer", "yogurt", "garam masala"},
		Allergens:      []string{"dairy"},
		TimeToCook:     35,
		Servings:       6,
		Vegetarian:     true,
		GlutenFree:     true,
	},
	{
		Name:           "Coconut Lentil Dal",
		Description:    "red lentils simmered in coconut milk and turmeric",
		Specialization: "indian",
		ProteinType:    "plant",
		Utensils:       []string{"stockpot", "ladle"},
		Ingredients:    []string{"red lentils", "coconut milk", "turmeric"},
		TimeToCook:     50,
		Servings:       12,
		Vegan:          true,
		Vegetarian:     true,
		GlutenFree:     true,
		DairyFree:      true,
	},
	{
		Name:           "Ratatouille Tartlets",
		Description:    "buttery tartlets piled with stewed summer vegetables",
		Specialization: "french",
		ProteinType:    "plant",
		Utensils:       []string{"tartlet pans", "rolling pin"},
		Ingredients:    []string{"pastry", "butter", "eggplant", "zucchini", "tomato"},
		Allergens:      []string{"gluten", "dairy"},
		TimeToCook:     55,
		Servings:       8,
		Vegetarian:     true,
	},
	{
		Name:           "Almond Crusted Chicken",
		Description:    "pan-seared chicken in a toasted almond crust",
		Specialization: "french",
		ProteinType:    "chicken",
		Utensils:       []string{"skillet", "tongs"},
		Ingredients:    []string{"chicken breast", "almond flour", "herbs"},
		Allergens:      []string{"nuts"},
		TimeToCook:     40,
		Servings:       4,
		GlutenFree:     true,
		DairyFree:      true,
	},
	{
		Name:           "Street Corn Esquites",
		Description:    "charred corn tossed with lime, chile, and cotija",
		Specialization: "mexican",
		ProteinType:    "plant",
		Utensils:       []string{"cast iron pan", "mixing bowl"},
		Ingredients:    []string{"corn", "cotija cheese", "lime", "mayonnaise"},
		Allergens:      []string{"dairy", "egg"},
		TimeToCook:     20,
		Servings:       8,
		Vegetarian:     true,
		GlutenFree:     true,
	},
	{
		Name:           "Jackfruit Tinga Tostadas",
		Description:    "smoky chipotle jackfruit on crisp corn tostadas",
		Specialization: "mexican",
		ProteinType:    "plant",
		Utensils:       []string{"saucepan", "tongs"},
		Ingredients:    []string{"jackfruit", "chipotle", "corn tostadas"},
		TimeToCook:     35,
		Servings:       10,
		Vegan:          true,
		Vegetarian:     true,
		GlutenFree:     true,
		DairyFree:      true,
	},
	{
		Name:           "Pad Thai Noodles",
		Description:    "rice noodles tossed with tamarind, egg, and peanuts",
		Specialization: "thai",
		ProteinType:    "egg",
		Utensils:       []string{"wok", "spatula"},
		Ingredients:    []string{"rice noodles", "tamarind", "egg", "peanuts"},
		Allergens:      []string{"peanuts", "egg", "soy"},
		TimeToCook:     30,
		Servings:       6,
		DairyFree:      true,
	},
	{
		Name:           "Green Curry Vegetables",
		Description:    "bamboo shoots and basil in fragrant green curry",
		Specialization: "thai",
		ProteinType:    "plant",
		Utensils:       []string{"wok", "ladle"},
		Ingredients: []string{
			"coconut milk", "green curry paste", "bamboo shoots", "basil",
		},
		TimeToCook: 35,
		Servings:   8,
		Vegan:      true,
		Vegetarian: true,
		GlutenFree: true,
		DairyFree:  true,
	},
	{
		Name:           "Herbed Quinoa Salad",
		Description:    "lemony quinoa with cucumber, herbs, and pine nuts",
		Specialization: "mediterranean",
		ProteinType:    "plant",
		Utensils:       []string{"saucepan", "salad bowl"},
		Ingredients:    []string{"quinoa", "cucumber", "parsley", "pine nuts"},
		Allergens:      []string{"nuts"},
		TimeToCook:     25,
		Servings:       8,
		Vegan:          true,
		Vegetarian:     true,
		GlutenFree:     true,
		DairyFree:      true,
	},
}
