// Package catalog stores the chef and recipe inventory in Redis and answers
// the lookup queries the workflow steps depend on. Recipes carry dietary
// flags and allergen lists, chefs carry a specialization and rating, and the
// two are joined on specialization whenever a recipe needs someone to cook it
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/kode4food/banquet/pkg/api"
	"github.com/redis/go-redis/v9"
)

type (
	// Chef is a caterer available for hire, ranked by rating within their
	// specialization
	Chef struct {
		Name           string  `json:"name"`
		Specialization string  `json:"specialization"`
		ID             int     `json:"id"`
		Rating         float64 `json:"rating"`
	}

	// Recipe is a dish in the catalog along with the dietary profile used
	// to decide whether a guest class can safely eat it
	Recipe struct {
		Name           string   `json:"name"`
		Description    string   `json:"short_description"`
		Specialization string   `json:"specialization"`
		ProteinType    string   `json:"protein_type"`
		Utensils       []string `json:"utensils"`
		Ingredients    []string `json:"ingredients"`
		Allergens      []string `json:"allergens"`
		ID             int      `json:"id"`
		TimeToCook     int      `json:"time_to_cook"`
		Servings       int      `json:"servings"`
		Vegan          bool     `json:"vegan"`
		Vegetarian     bool     `json:"vegetarian"`
		GlutenFree     bool     `json:"gluten_free"`
		DairyFree      bool     `json:"dairy_free"`
	}

	// Match pairs a safe recipe with the best-rated chef able to cook it
	Match struct {
		Recipe *Recipe
		Chef   *Chef
	}

	// Store provides catalog access over a Redis connection. All keys are
	// namespaced under the configured prefix
	Store struct {
		rdb    redis.UniversalClient
		prefix string
	}
)

const (
	chefsKey           = "chefs"
	recipesKey         = "recipes"
	specializationsKey = "specializations"
	chefsBySpecKey     = "chefs_by_spec"
	nextChefIDKey      = "next_chef_id"
	nextRecipeIDKey    = "next_recipe_id"
)

var (
	ErrChefNotFound   = errors.New("chef not found")
	ErrRecipeNotFound = errors.New("recipe not found")
)

// NewStore creates a catalog Store on the provided Redis client
func NewStore(rdb redis.UniversalClient, prefix string) *Store {
	return &Store{
		rdb:    rdb,
		prefix: prefix,
	}
}

// SaveChef persists a chef, assigning an ID when one isn't already set. The
// chef is also indexed by specialization so ranked lookups stay cheap
func (s *Store) SaveChef(ctx context.Context, c *Chef) error {
	if c.ID == 0 {
		id, err := s.rdb.Incr(ctx, s.key(nextChefIDKey)).Result()
		if err != nil {
			return err
		}
		c.ID = int(id)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	field := fmt.Sprintf("%d", c.ID)
	if err := s.rdb.HSet(ctx, s.key(chefsKey), field, data).Err(); err != nil {
		return err
	}
	spec := strings.ToLower(c.Specialization)
	if err := s.rdb.SAdd(ctx, s.key(specializationsKey), spec).Err(); err != nil {
		return err
	}
	return s.rdb.ZAdd(ctx, s.key(chefsBySpecKey, spec), redis.Z{
		Score:  c.Rating,
		Member: field,
	}).Err()
}

// SaveRecipe persists a recipe, assigning an ID when one isn't already set
func (s *Store) SaveRecipe(ctx context.Context, r *Recipe) error {
	if r.ID == 0 {
		id, err := s.rdb.Incr(ctx, s.key(nextRecipeIDKey)).Result()
		if err != nil {
			return err
		}
		r.ID = int(id)
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	field := fmt.Sprintf("%d", r.ID)
	return s.rdb.HSet(ctx, s.key(recipesKey), field, data).Err()
}

// GetChef retrieves a single chef by ID
func (s *Store) GetChef(ctx context.Context, id int) (*Chef, error) {
	data, err := s.rdb.HGet(ctx, s.key(chefsKey), fmt.Sprintf("%d", id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %d", ErrChefNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var c Chef
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetRecipe retrieves a single recipe by ID
func (s *Store) GetRecipe(ctx context.Context, id int) (*Recipe, error) {
	data, err :=
		s.rdb.HGet(ctx, s.key(recipesKey), fmt.Sprintf("%d", id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %d", ErrRecipeNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var r Recipe
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Chefs returns every chef in the catalog, ordered by ID
func (s *Store) Chefs(ctx context.Context) ([]*Chef, error) {
	all, err := s.rdb.HGetAll(ctx, s.key(chefsKey)).Result()
	if err != nil {
		return nil, err
	}
	res := make([]*Chef, 0, len(all))
	for _, data := range all {
		var c Chef
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, err
		}
		res = append(res, &c)
	}
	sort.Slice(res, func(l, r int) bool {
		return res[l].ID < res[r].ID
	})
	return res, nil
}

// Recipes returns every recipe in the catalog, ordered by ID
func (s *Store) Recipes(ctx context.Context) ([]*Recipe, error) {
	all, err := s.rdb.HGetAll(ctx, s.key(recipesKey)).Result()
	if err != nil {
		return nil, err
	}
	res := make([]*Recipe, 0, len(all))
	for _, data := range all {
		var r Recipe
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, err
		}
		res = append(res, &r)
	}
	sort.Slice(res, func(l, r int) bool {
		return res[l].ID < res[r].ID
	})
	return res, nil
}

// Specializations returns the distinct chef specializations, sorted
func (s *Store) Specializations(ctx context.Context) ([]string, error) {
	specs, err := s.rdb.SMembers(ctx, s.key(specializationsKey)).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(specs)
	return specs, nil
}

// ChefsBySpecialization returns the chefs for a specialization, best rating
// first
func (s *Store) ChefsBySpecialization(
	ctx context.Context, spec string,
) ([]*Chef, error) {
	key := s.key(chefsBySpecKey, strings.ToLower(spec))
	ids, err := s.rdb.ZRevRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	res := make([]*Chef, 0, len(ids))
	for _, id := range ids {
		data, err := s.rdb.HGet(ctx, s.key(chefsKey), id).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var c Chef
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, err
		}
		res = append(res, &c)
	}
	return res, nil
}

// SafeMatches returns the recipes a guest class can safely eat, each paired
// with the top-rated chef for its specialization and ordered by that rating.
// A recipe qualifies when it carries every requested dietary flag and none of
// its declared allergens or ingredients conflict with the requested allergen
// exclusions
func (s *Store) SafeMatches(
	ctx context.Context, req *api.Requirement,
) ([]*Match, error) {
	recipes, err := s.Recipes(ctx)
	if err != nil {
		return nil, err
	}
	var res []*Match
	for _, r := range recipes {
		if !r.Satisfies(req) {
			continue
		}
		chefs, err := s.ChefsBySpecialization(ctx, r.Specialization)
		if err != nil {
			return nil, err
		}
		if len(chefs) == 0 {
			continue
		}
		res = append(res, &Match{
			Recipe: r,
			Chef:   chefs[0],
		})
	}
	sort.SliceStable(res, func(l, r int) bool {
		if res[l].Chef.Rating != res[r].Chef.Rating {
			return res[l].Chef.Rating > res[r].Chef.Rating
		}
		return res[l].Recipe.ID < res[r].Recipe.ID
	})
	return res, nil
}

// Satisfies reports whether the recipe meets every dietary flag in the
// requirement and avoids all of its excluded allergens. Allergen names are
// compared against the recipe's declared allergens exactly and against its
// ingredient list as a case-insensitive substring
func (r *Recipe) Satisfies(req *api.Requirement) bool {
	for _, d := range req.Dietary {
		switch d {
		case api.Vegan:
			if !r.Vegan {
				return false
			}
		case api.Vegetarian:
			if !r.Vegetarian {
				return false
			}
		case api.GlutenFree:
			if !r.GlutenFree {
				return false
			}
		case api.DairyFree:
			if !r.DairyFree {
				return false
			}
		default:
			return false
		}
	}
	for _, a := range req.Allergens {
		if slices.Contains(r.Allergens, a) {
			return false
		}
		needle := strings.ToLower(a)
		for _, ing := range r.Ingredients {
			if strings.Contains(strings.ToLower(ing), needle) {
				return false
			}
		}
	}
	return true
}

// Dietary returns the restriction flags this recipe satisfies, in canonical
// order
func (r *Recipe) Dietary() []api.Restriction {
	var res []api.Restriction
	for _, d := range api.KnownRestrictions {
		switch d {
		case api.Vegan:
			if r.Vegan {
				res = append(res, d)
			}
		case api.Vegetarian:
			if r.Vegetarian {
				res = append(res, d)
			}
		case api.GlutenFree:
			if r.GlutenFree {
				res = append(res, d)
			}
		case api.DairyFree:
			if r.DairyFree {
				res = append(res, d)
			}
		}
	}
	return res
}

func (s *Store) key(parts ...string) string {
	return s.prefix + ":" + strings.Join(parts, ":")
}
