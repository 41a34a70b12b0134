package catalog_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/kode4food/banquet/internal/assert"
	"github.com/kode4food/banquet/internal/catalog"
	"github.com/kode4food/banquet/pkg/api"
	"github.com/redis/go-redis/v9"
)

func testStore(t *testing.T) *catalog.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
	})
	return catalog.NewStore(rdb, "banquet_test")
}

func seededStore(t *testing.T) *catalog.Store {
	t.Helper()
	s := testStore(t)
	as := assert.New(t)
	as.Require.NoError(s.Seed(context.Background()))
	return s
}

func TestSaveChefAssignsID(t *testing.T) {
	as := assert.New(t)
	s := testStore(t)
	ctx := context.Background()

	chef := &catalog.Chef{
		Name:           "Maria Rossi",
		Specialization: "Italian",
		Rating:         4.8,
	}
	as.NoError(s.SaveChef(ctx, chef))
	as.Equal(1, chef.ID)

	got, err := s.GetChef(ctx, 1)
	as.NoError(err)
	as.Equal("Maria Rossi", got.Name)
	as.Equal(4.8, got.Rating)
}

func TestGetChefNotFound(t *testing.T) {
	as := assert.New(t)
	s := testStore(t)

	_, err := s.GetChef(context.Background(), 42)
	as.ErrorIs(err, catalog.ErrChefNotFound)
}

func TestSaveRecipeRoundTrip(t *testing.T) {
	as := assert.New(t)
	s := testStore(t)
	ctx := context.Background()

	recipe := &catalog.Recipe{
		Name:           "Coconut Lentil Dal",
		Description:    "red lentils simmered in coconut milk",
		Specialization: "indian",
		ProteinType:    "plant",
		Ingredients:    []string{"red lentils", "coconut milk"},
		TimeToCook:     50,
		Servings:       12,
		Vegan:          true,
		Vegetarian:     true,
		GlutenFree:     true,
		DairyFree:      true,
	}
	as.NoError(s.SaveRecipe(ctx, recipe))
	as.Equal(1, recipe.ID)

	got, err := s.GetRecipe(ctx, 1)
	as.NoError(err)
	as.Equal("Coconut Lentil Dal", got.Name)
	as.Equal([]string{"red lentils", "coconut milk"}, got.Ingredients)
	as.True(got.Vegan)

	_, err = s.GetRecipe(ctx, 99)
	as.ErrorIs(err, catalog.ErrRecipeNotFound)
}

func TestChefsBySpecializationRanked(t *testing.T) {
	as := assert.New(t)
	s := testStore(t)
	ctx := context.Background()

	chefs := []*catalog.Chef{
		{Name: "First", Specialization: "italian", Rating: 4.1},
		{Name: "Second", Specialization: "italian", Rating: 4.8},
		{Name: "Third", Specialization: "italian", Rating: 4.5},
		{Name: "Other", Specialization: "thai", Rating: 5.0},
	}
	for _, c := range chefs {
		as.Require.NoError(s.SaveChef(ctx, c))
	}

	ranked, err := s.ChefsBySpecialization(ctx, "Italian")
	as.NoError(err)
	as.Len(ranked, 3)
	as.Equal("Second", ranked[0].Name)
	as.Equal("Third", ranked[1].Name)
	as.Equal("First", ranked[2].Name)
}

func TestSpecializationsSorted(t *testing.T) {
	as := assert.New(t)
	s := testStore(t)
	ctx := context.Background()

	for _, spec := range []string{"Thai", "italian", "French"} {
		chef := &catalog.Chef{Name: spec, Specialization: spec, Rating: 4.0}
		as.Require.NoError(s.SaveChef(ctx, chef))
	}

	specs, err := s.Specializations(ctx)
	as.NoError(err)
	as.Equal([]string{"french", "italian", "thai"}, specs)
}

func TestSafeMatchesFiltersByFlags(t *testing.T) {
	as := assert.New(t)
	s := testStore(t)
	ctx := context.Background()

	chef := &catalog.Chef{
		Name: "Cook", Specialization: "italian", Rating: 4.0,
	}
	as.Require.NoError(s.SaveChef(ctx, chef))

	veganDish := &catalog.Recipe{
		Name:           "Polenta",
		Specialization: "italian",
		Vegan:          true,
		Vegetarian:     true,
		GlutenFree:     true,
	}
	dairyDish := &catalog.Recipe{
		Name:           "Flatbread",
		Specialization: "italian",
		Vegetarian:     true,
	}
	as.Require.NoError(s.SaveRecipe(ctx, veganDish))
	as.Require.NoError(s.SaveRecipe(ctx, dairyDish))

	matches, err := s.SafeMatches(ctx, &api.Requirement{
		Dietary: []api.Restriction{api.Vegan, api.GlutenFree},
	})
	as.NoError(err)
	as.Len(matches, 1)
	as.Equal("Polenta", matches[0].Recipe.Name)
	as.Equal("Cook", matches[0].Chef.Name)
}

func TestSafeMatchesExcludesAllergens(t *testing.T) {
	as := assert.New(t)
	s := testStore(t)
	ctx := context.Background()

	chef := &catalog.Chef{Name: "Cook", Specialization: "thai", Rating: 4.0}
	as.Require.NoError(s.SaveChef(ctx, chef))

	declared := &catalog.Recipe{
		Name:           "Almond Crusted Chicken",
		Specialization: "thai",
		Allergens:      []string{"nuts"},
	}
	hidden := &catalog.Recipe{
		Name:           "Pad Thai",
		Specialization: "thai",
		Ingredients:    []string{"rice noodles", "Roasted Peanuts"},
	}
	safe := &catalog.Recipe{
		Name:           "Green Curry",
		Specialization: "thai",
		Ingredients:    []string{"coconut milk", "basil"},
	}
	for _, r := range []*catalog.Recipe{declared, hidden, safe} {
		as.Require.NoError(s.SaveRecipe(ctx, r))
	}

	matches, err := s.SafeMatches(ctx, &api.Requirement{
		Allergens: []string{"nuts"},
	})
	as.NoError(err)
	as.Len(matches, 1)
	as.Equal("Green Curry", matches[0].Recipe.Name)
}

func TestSafeMatchesRequiresChef(t *testing.T) {
	as := assert.New(t)
	s := testStore(t)
	ctx := context.Background()

	orphan := &catalog.Recipe{
		Name:           "Gravlax",
		Specialization: "nordic",
	}
	as.Require.NoError(s.SaveRecipe(ctx, orphan))

	matches, err := s.SafeMatches(ctx, &api.Requirement{})
	as.NoError(err)
	as.Empty(matches)
}

func TestSafeMatchesOrderedByChefRating(t *testing.T) {
	as := assert.New(t)
	s := testStore(t)
	ctx := context.Background()

	chefs := []*catalog.Chef{
		{Name: "Journeyman", Specialization: "italian", Rating: 4.2},
		{Name: "Virtuoso", Specialization: "japanese", Rating: 4.9},
	}
	for _, c := range chefs {
		as.Require.NoError(s.SaveChef(ctx, c))
	}
	recipes := []*catalog.Recipe{
		{Name: "Polenta", Specialization: "italian"},
		{Name: "Sushi", Specialization: "japanese"},
	}
	for _, r := range recipes {
		as.Require.NoError(s.SaveRecipe(ctx, r))
	}

	matches, err := s.SafeMatches(ctx, &api.Requirement{})
	as.NoError(err)
	as.Len(matches, 2)
	as.Equal("Virtuoso", matches[0].Chef.Name)
	as.Equal("Journeyman", matches[1].Chef.Name)
}

func TestSeedIsIdempotent(t *testing.T) {
	as := assert.New(t)
	s := testStore(t)
	ctx := context.Background()

	as.NoError(s.Seed(ctx))
	recipes, err := s.Recipes(ctx)
	as.NoError(err)
	as.NotEmpty(recipes)

	as.NoError(s.Seed(ctx))
	again, err := s.Recipes(ctx)
	as.NoError(err)
	as.Len(again, len(recipes))
}
