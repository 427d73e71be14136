// Package category maps geocoder place classifications to the category
// key and emoji shown on the map.
package category

import "strings"

// Category is a display category for a pinned place.
type Category struct {
	Key   string `json:"key"`
	Emoji string `json:"emoji"`
}

// Known categories.
var (
	City     = Category{Key: "city", Emoji: "🏙️"}
	Food     = Category{Key: "food", Emoji: "🍜"}
	Stay     = Category{Key: "stay", Emoji: "🛏️"}
	Trail    = Category{Key: "trail", Emoji: "🥾"}
	Beach    = Category{Key: "beach", Emoji: "🏖️"}
	Landmark = Category{Key: "landmark", Emoji: "🏛️"}
	Nature   = Category{Key: "nature", Emoji: "🏞️"}
	POI      = Category{Key: "poi", Emoji: "📍"}
)

// rule matches a class and, when types is non-empty, one of the listed types.
type rule struct {
	classes []string
	types   []string
	result  Category
}

func (r rule) matches(class, typ string) bool {
	if !contains(r.classes, class) {
		return false
	}
	return len(r.types) == 0 || contains(r.types, typ)
}

// rules are evaluated in order; the first match wins. The narrow trail and
// beach rules sit above the landmark and nature rules so a more specific
// classification is never swallowed by a class-wide one.
var rules = []rule{
	{classes: []string{"place"}, types: []string{"city", "town", "village", "hamlet"}, result: City},
	{classes: []string{"amenity"}, types: []string{"restaurant", "cafe", "bar", "fast_food"}, result: Food},
	{classes: []string{"tourism"}, types: []string{"hotel", "motel", "hostel", "guest_house"}, result: Stay},
	{classes: []string{"amenity"}, types: []string{"hotel"}, result: Stay},
	{classes: []string{"route"}, types: []string{"hiking"}, result: Trail},
	{classes: []string{"natural"}, types: []string{"peak", "mountain"}, result: Trail},
	{classes: []string{"natural"}, types: []string{"beach", "coastline"}, result: Beach},
	{classes: []string{"tourism", "historic", "leisure"}, result: Landmark},
	{classes: []string{"natural", "waterway"}, result: Nature},
}

// Infer returns the category for a geocoder class/type pair. Matching is
// case-insensitive and either value may be empty. Infer always returns a
// category, falling back to POI.
func Infer(class, typ string) Category {
	class = strings.ToLower(strings.TrimSpace(class))
	typ = strings.ToLower(strings.TrimSpace(typ))

	for _, r := range rules {
		if r.matches(class, typ) {
			return r.result
		}
	}
	return POI
}

// Default returns the fallback category.
func Default() Category {
	return POI
}

// Lookup returns the category registered under key.
func Lookup(key string) (Category, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, c := range All() {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// All returns every known category, POI last.
func All() []Category {
	return []Category{City, Food, Stay, Trail, Beach, Landmark, Nature, POI}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
