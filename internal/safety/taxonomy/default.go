package taxonomy

var (
	peanutKeywords = []string{
		"peanut", "peanuts", "groundnut", "groundnuts", "peanut butter", "peanut oil",
		"peanut sauce", "arachis", "satay",
	}
	treeNutKeywords = []string{
		"tree nut", "tree nuts", "almond", "almonds", "walnut", "walnuts", "cashew", "cashews",
		"pecan", "pecans", "pistachio", "pistachios", "hazelnut", "hazelnuts", "macadamia",
		"brazil nut", "brazil nuts", "pine nut", "pine nuts", "praline", "marzipan", "nutella",
		"pesto", "nut", "nuts",
	}
	milkKeywords = []string{
		"milk", "dairy", "cheese", "butter", "cream", "yogurt", "yoghurt", "ghee", "whey",
		"casein", "lactose", "paneer", "custard", "mozzarella", "parmesan", "ricotta",
	}
)

// defaultAllergens lists the major food allergens and the words that signal them
// on menus and restaurant descriptions.
var defaultAllergens = map[string][]string{
	"Peanuts":   peanutKeywords,
	"Tree Nuts": treeNutKeywords,
	"Nuts":      concat(treeNutKeywords, peanutKeywords),
	"Milk":      milkKeywords,
	"Dairy":     milkKeywords,
	"Eggs": {
		"egg", "eggs", "mayonnaise", "mayo", "aioli", "meringue", "albumin", "omelette",
		"omelet", "frittata", "custard", "hollandaise",
	},
	"Fish": {
		"fish", "salmon", "tuna", "cod", "anchovy", "anchovies", "sardine", "sardines",
		"halibut", "tilapia", "mackerel", "trout", "fish sauce", "bonito", "sushi", "sashimi",
	},
	"Shellfish": {
		"shellfish", "shrimp", "prawn", "prawns", "crab", "lobster", "crayfish", "crawfish",
		"scallop", "scallops", "clam", "clams", "mussel", "mussels", "oyster", "oysters",
		"squid", "calamari", "octopus", "seafood",
	},
	"Wheat": {
		"wheat", "flour", "bread", "pasta", "noodle", "noodles", "couscous", "semolina",
		"seitan", "bulgur", "spelt", "farro", "durum", "breadcrumbs", "panko", "tempura",
	},
	"Gluten": {
		"gluten", "wheat", "barley", "rye", "malt", "seitan", "flour", "bread", "pasta",
		"couscous", "semolina", "spelt",
	},
	"Soy": {
		"soy", "soya", "soybean", "soybeans", "soy sauce", "tofu", "tempeh", "edamame",
		"miso", "shoyu", "tamari",
	},
	"Sesame": {
		"sesame", "sesame oil", "sesame seeds", "tahini", "hummus", "halva", "gomasio",
	},
	"Mustard": {"mustard", "dijon"},
	"Celery":  {"celery", "celeriac"},
	"Sulfites": {
		"sulfite", "sulfites", "sulphite", "sulphites", "wine", "dried fruit",
	},
	"Lupin": {"lupin", "lupine"},
}

// defaultDietary lists the ingredients that conflict with common dietary
// restrictions.
var defaultDietary = map[string][]string{
	"Vegan": {
		"meat", "beef", "pork", "chicken", "lamb", "mutton", "veal", "turkey", "duck",
		"bacon", "ham", "sausage", "fish", "seafood", "shrimp", "prawn", "anchovy",
		"dairy", "milk", "cheese", "butter", "cream", "yogurt", "ghee", "whey",
		"egg", "eggs", "honey", "gelatin", "gelatine", "lard", "steakhouse", "bbq", "barbecue",
	},
	"Vegetarian": {
		"meat", "beef", "pork", "chicken", "lamb", "mutton", "veal", "turkey", "duck",
		"bacon", "ham", "sausage", "fish", "seafood", "shrimp", "prawn", "anchovy",
		"gelatin", "gelatine", "lard", "steakhouse",
	},
	"Pescatarian": {
		"meat", "beef", "pork", "chicken", "lamb", "mutton", "veal", "turkey", "duck",
		"bacon", "ham", "sausage", "steakhouse",
	},
	"Halal": {
		"pork", "bacon", "ham", "lard", "prosciutto", "pancetta", "chorizo", "salami",
		"alcohol", "wine", "beer", "rum", "sake", "mirin", "gelatin",
	},
	"Kosher": {
		"pork", "bacon", "ham", "lard", "shellfish", "shrimp", "prawn", "lobster", "crab",
		"clam", "oyster", "cheeseburger",
	},
	"Gluten-Free": {
		"gluten", "wheat", "barley", "rye", "malt", "flour", "bread", "pasta", "noodles",
		"couscous", "seitan", "bakery", "pizza", "dumplings",
	},
	"Dairy-Free": {
		"dairy", "milk", "cheese", "butter", "cream", "yogurt", "ghee", "whey", "casein",
		"paneer", "gelato", "ice cream",
	},
	"Keto": {
		"sugar", "bread", "pasta", "rice", "noodles", "potato", "potatoes", "fries",
		"tortilla", "dessert", "bakery", "pancakes",
	},
	"Low-Sodium": {
		"soy sauce", "cured", "pickled", "salted", "bacon", "ham", "fish sauce", "miso",
	},
}

func concat(sets ...[]string) []string {
	var out []string
	for _, set := range sets {
		out = append(out, set...)
	}
	return out
}

var defaultTaxonomy = MustNew(defaultAllergens, defaultDietary)

// Default returns the built-in taxonomy shared by every component.
func Default() *Taxonomy {
	return defaultTaxonomy
}
