package station

import "strings"

// Station identifies a physical kitchen work area. HeadChef is the
// supervisory terminal role and is never a routing target for dishes.
type Station string

const (
	Fry      Station = "FRY"
	Grill    Station = "GRILL"
	Curry    Station = "CURRY"
	Rice     Station = "RICE"
	Dessert  Station = "DESSERT"
	Prep     Station = "PREP"
	HeadChef Station = "HEAD_CHEF"
)

// Cooking lists the stations a dish can be routed to.
func Cooking() []Station {
	return []Station{Fry, Grill, Curry, Rice, Dessert, Prep}
}

// Valid reports whether s names a known terminal station or the head chef role.
func Valid(s Station) bool {
	if s == HeadChef {
		return true
	}
	for _, c := range Cooking() {
		if s == c {
			return true
		}
	}
	return false
}

// routing is evaluated in order; the first station whose keyword set matches
// wins. Many dish names match several sets ("Crispy Paneer Tikka"), so the
// sequence here is significant and must not be reordered.
var routing = []struct {
	station  Station
	keywords []string
}{
	{Fry, []string{"fried", "fry", "dosa", "samosa", "pakora", "vada", "spring roll", "65", "manchurian", "crispy", "onion ring"}},
	{Grill, []string{"tikka", "tandoor", "kebab", "grill", "seekh", "malai", "naan", "roti", "paratha", "kulcha"}},
	{Curry, []string{"curry", "masala", "butter", "paneer", "kadai", "korma", "dal", "gravy", "palak", "shahi", "makhani", "chole", "rajma"}},
	{Rice, []string{"rice", "biryani", "pulao", "khichdi", "jeera"}},
	{Dessert, []string{"sweets", "ice cream", "kulfi", "kheer", "halwa", "cake", "gulab", "lassi", "shake", "juice", "coffee", "tea", "chai"}},
	{Prep, []string{"salad", "raita", "chutney", "pickle", "papad", "cold"}},
}

// Classify routes a dish name to its cooking station by case-insensitive
// substring match against the fixed keyword lists. Unmatched or empty names
// fall back to the curry station. Classify is total; it never fails.
func Classify(name string) Station {
	n := strings.ToLower(name)
	for _, r := range routing {
		for _, kw := range r.keywords {
			if strings.Contains(n, kw) {
				return r.station
			}
		}
	}
	return Curry
}
