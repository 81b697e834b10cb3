package domain

// Category names used by the listing filters.
const (
	CategoryAll         = "All"
	CategoryMurtis      = "Murtis"
	CategoryShowpieces  = "Showpieces"
	CategoryMarbleDecor = "Marble Decor"
)

// Categories returns the listing filter options in display order.
func Categories() []string {
	return []string{CategoryAll, CategoryMurtis, CategoryShowpieces, CategoryMarbleDecor}
}

// Product is a catalog entry as served by the storefront backend.
type Product struct {
	ID          ID      `json:"id,omitempty"`
	AltID       ID      `json:"_id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	Category    string  `json:"category,omitempty"`
	Featured    bool    `json:"featured"`
	InStock     bool    `json:"inStock"`
	Dimensions  string  `json:"dimensions,omitempty"`
	Material    string  `json:"material,omitempty"`
	Weight      string  `json:"weight,omitempty"`
}

// Key returns the primary id, falling back to the backend's _id.
func (p Product) Key() ID {
	if p.ID != "" {
		return p.ID
	}
	return p.AltID
}

// DisplayName returns the name or a placeholder for unnamed records.
func (p Product) DisplayName() string {
	if p.Name == "" {
		return "Untitled"
	}
	return p.Name
}
