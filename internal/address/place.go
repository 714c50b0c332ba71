package address

// NotClassified is the description for POI class/type pairs outside the
// configured whitelist.
const NotClassified = "não classificado"

// ReferencePlace is an immutable classified point of interest.
type ReferencePlace struct {
	ClassName   string `json:"className"`
	TypeName    string `json:"typeName"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description"`
}

// Classifier maps geocoder class/type pairs to human-readable descriptions.
// Pairs outside the whitelist are classified as NotClassified.
type Classifier struct {
	descriptions map[string]map[string]string
}

// NewClassifier builds a classifier from a class → type → description map.
// A nil map yields a classifier that marks everything NotClassified.
func NewClassifier(descriptions map[string]map[string]string) *Classifier {
	return &Classifier{descriptions: descriptions}
}

// DefaultClassifier returns the built-in whitelist of tourist-relevant
// OpenStreetMap class/type pairs with Portuguese descriptions.
func DefaultClassifier() *Classifier {
	return NewClassifier(map[string]map[string]string{
		"tourism": {
			"attraction":  "atração turística",
			"camp_site":   "camping",
			"hotel":       "hotel",
			"guest_house": "pousada",
			"museum":      "museu",
			"viewpoint":   "mirante",
			"information": "informação turística",
		},
		"historic": {
			"monument":       "monumento histórico",
			"memorial":       "memorial",
			"ruins":          "ruínas",
			"archaeological_site": "sítio arqueológico",
		},
		"amenity": {
			"restaurant":       "restaurante",
			"bar":              "bar",
			"cafe":             "café",
			"place_of_worship": "igreja",
			"marketplace":      "mercado",
		},
		"natural": {
			"waterfall": "cachoeira",
			"peak":      "pico",
			"beach":     "praia",
		},
		"leisure": {
			"park":   "parque",
			"garden": "jardim",
		},
	})
}

// Classify builds a ReferencePlace from raw classification data. Unknown
// class/type pairs fall back to NotClassified.
func (c *Classifier) Classify(className, typeName, name string) ReferencePlace {
	place := ReferencePlace{
		ClassName:   className,
		TypeName:    typeName,
		Name:        name,
		Description: NotClassified,
	}

	if c == nil || c.descriptions == nil {
		return place
	}
	if types, ok := c.descriptions[className]; ok {
		if desc, ok := types[typeName]; ok {
			place.Description = desc
		}
	}
	return place
}
