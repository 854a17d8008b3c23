package services

import (
	"regexp"
	"strconv"
	"strings"
)

const maxKeywords = 8

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "to": {}, "for": {}, "with": {}, "of": {},
	"in": {}, "on": {}, "at": {}, "is": {}, "are": {}, "best": {}, "good": {}, "cheap": {},
	"under": {}, "over": {}, "between": {}, "show": {}, "me": {}, "i": {}, "want": {}, "need": {},
	"buy": {}, "looking": {}, "recommend": {}, "please": {}, "help": {}, "something": {}, "like": {},
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)

// budgetPatterns are tried in order; the first that matches wins.
var budgetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`under\s*\$?\s*(\d{1,5})`),
	regexp.MustCompile(`below\s*\$?\s*(\d{1,5})`),
	regexp.MustCompile(`<=\s*\$?\s*(\d{1,5})`),
}

type categorySynonyms struct {
	canonical string
	phrases   []string
}

// categoryTable is walked in order; earlier entries win over later ones even
// when a later entry's phrase is a closer fit ("spray" lands in fragrances).
var categoryTable = []categorySynonyms{
	{"fragrances", []string{
		"fragrance", "fragrances", "perfume", "perfumes", "cologne", "colognes", "eau de parfum",
		"edp", "eau de toilette", "edt", "body spray", "spray", "deodorant", "deodorants", "scent",
		"scents", "aftershave", "after shave", "men's fragrance", "womens fragrance",
	}},
	{"beauty", []string{
		"beauty", "makeup", "make up", "cosmetics", "skincare", "skin care", "skin", "lotion",
		"lotions", "cream", "creams", "moisturizer", "moisturiser", "serum", "serums", "cleanser",
		"cleansers", "face wash", "facewash", "foundation", "concealer", "powder", "compact",
		"blush", "lipstick", "lip", "mascara", "eyeshadow", "eye shadow", "palette",
		"makeup palette", "nail polish", "nails", "perfume makeup",
	}},
	{"groceries", []string{
		"grocery", "groceries", "food", "foods", "fresh", "produce", "vegetables", "veggies",
		"fruits", "fruit", "snack", "snacks", "drink", "drinks", "beverage", "beverages", "water",
		"soft drink", "soft drinks", "soda", "juice", "milk", "coffee", "nescafe", "tea", "protein",
		"protein powder", "meat", "meats", "chicken", "beef", "fish", "steak", "eggs", "dairy",
		"cooking", "cook", "oil", "cooking oil", "pantry", "kitchen staples", "ingredients",
	}},
	{"furniture", []string{
		"furniture", "sofa", "couch", "sectional", "bed", "beds", "bedframe", "bed frame",
		"mattress", "chair", "chairs", "stool", "table", "tables", "desk", "desks", "nightstand",
		"night stand", "side table", "end table", "dresser", "wardrobe", "cabinet", "shelf",
		"shelving",
	}},
	{"home-decoration", []string{
		"home decor", "home décor", "decor", "decoration", "decorations", "decorate", "interior",
		"interior decor", "aesthetic", "wall decor", "wall art", "art", "frame", "photo frame",
		"picture frame", "family photo frame", "lamp", "table lamp", "lighting", "plant", "plants",
		"indoor plant", "house plant", "houseplant", "vase", "ornament", "showpiece", "show piece",
		"centerpiece", "swing", "decoration swing",
	}},
	{"kitchen-accessories", []string{
		"kitchen", "kitchen accessory", "kitchen accessories", "kitchen tools", "kitchen tool",
		"utensil", "utensils", "cookware", "cooking tools", "kitchenware", "kitchen gadgets",
		"gadget", "gadgets", "spatula", "spoon", "fork", "knife", "cutlery", "chopping board",
		"cutting board", "board", "strainer", "sieve", "mesh strainer", "grater", "peeler", "juicer",
		"citrus squeezer", "rolling pin", "tray", "tongs", "turner", "spice rack", "microwave",
		"microwave oven", "oven", "electric stove", "stove", "blender", "hand blender", "mixer",
		"ice cube tray", "egg slicer", "mug stand", "mug tree", "lunch box", "storage box",
		"food container", "wok", "pan", "pot", "plate", "glass", "cup", "kitchen sink", "sink",
	}},
	{"laptops", []string{
		"laptop", "laptops", "notebook", "notebooks", "notebook pc", "computer", "computers", "pc",
		"windows laptop", "macbook", "macbook pro", "ultrabook", "work laptop", "school laptop",
		"college laptop", "programming laptop", "developer laptop", "gaming laptop",
		"business laptop",
	}},
	{"mens-shirts", []string{
		"men shirts", "men's shirts", "mens shirts", "shirt", "shirts", "tshirt", "t-shirt",
		"t shirts", "tee", "tees", "polo", "polo shirt", "button down", "button-down", "button up",
		"button-up", "dress shirt", "formal shirt", "casual shirt", "plaid shirt", "check shirt",
		"checked shirt", "short sleeve shirt", "long sleeve shirt", "top", "tops",
	}},
	{"mens-shoes", []string{
		"men shoes", "men's shoes", "mens shoes", "shoe", "shoes", "sneaker", "sneakers", "trainer",
		"trainers", "running shoes", "sports shoes", "athletic shoes", "casual shoes", "boots",
		"cleats", "football cleats", "soccer cleats", "gym shoes", "walking shoes",
	}},
	{"mens-watches", []string{
		"men watches", "men's watches", "mens watches", "watch", "watches", "wristwatch",
		"wrist watch", "timepiece", "luxury watch", "automatic watch", "mechanical watch",
		"chronograph", "datejust", "submariner", "rolex", "longines",
	}},
	{"mobile-accessories", []string{
		"mobile accessories", "phone accessories", "mobile accessory", "phone accessory", "phone",
		"smartphone", "iphone accessories", "android accessories", "earbuds", "earphones",
		"headphones", "airpods", "wireless earbuds", "bluetooth earbuds", "speaker", "smart speaker",
		"echo", "amazon echo", "charger", "charging cable", "cable", "usb cable", "type c cable",
		"usb-c cable", "phone case", "case", "cover", "screen protector", "power bank",
		"portable charger", "adapter",
	}},
}

// Intent is what the assistant understood from a shopper's message.
type Intent struct {
	Keywords         []string
	BudgetMax        *float64
	InferredCategory *string
}

func ExtractIntent(message string, categories []string) Intent {
	return Intent{
		Keywords:         ExtractKeywords(message),
		BudgetMax:        ExtractBudgetMax(message),
		InferredCategory: InferCategory(message, categories),
	}
}

// ExtractKeywords returns up to 8 distinct lowercase search terms in the order
// they first appear, skipping short words and filler.
func ExtractKeywords(message string) []string {
	cleaned := nonAlnum.ReplaceAllString(strings.ToLower(message), " ")

	seen := make(map[string]struct{})
	keywords := make([]string, 0, maxKeywords)
	for _, w := range strings.Fields(cleaned) {
		if len(w) < 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// ExtractBudgetMax finds an upper price bound such as "under $50" or "<= 20".
func ExtractBudgetMax(message string) *float64 {
	t := strings.ToLower(message)
	for _, re := range budgetPatterns {
		m := re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil
		}
		return &n
	}
	return nil
}

// InferCategory picks the catalog category the message is about. A category
// named verbatim wins; otherwise the first synonym group with a hit decides,
// yielding nil when the catalog does not carry that group's category.
func InferCategory(message string, categories []string) *string {
	t := strings.ToLower(message)

	for _, c := range categories {
		// "" is a substring of every message
		if c == "" {
			continue
		}
		if strings.Contains(t, strings.ToLower(c)) {
			return &c
		}
	}

	for _, entry := range categoryTable {
		if !containsAny(t, entry.phrases) {
			continue
		}
		for _, c := range categories {
			if strings.EqualFold(c, entry.canonical) {
				return &c
			}
		}
		return nil
	}
	return nil
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
