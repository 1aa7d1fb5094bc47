package core

// Candidate is one product returned by a retailer search.
type Candidate struct {
	ItemID      string   `json:"itemId,omitempty"`
	Title       string   `json:"title"`
	Price       string   `json:"price,omitempty"`
	Rating      string   `json:"rating,omitempty"`
	Badges      []string `json:"badges,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Size        string   `json:"size,omitempty"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// SelectionResult is the outcome of choosing a candidate for one item.
// SelectedIndex is zero-based.
type SelectionResult struct {
	SelectedIndex   int
	SelectedProduct Candidate
	Reasoning       string
	MatchScore      int
	Warnings        []string
	Fallback        bool
}

// SelectedProduct is the persisted summary of a selection that made it into the cart.
type SelectedProduct struct {
	Requested  string `json:"requested"`
	Selected   string `json:"selected"`
	ItemID     string `json:"itemId,omitempty"`
	Price      string `json:"price,omitempty"`
	Quantity   int    `json:"quantity"`
	Reasoning  string `json:"reasoning,omitempty"`
	MatchScore int    `json:"matchScore"`
}

// CartRequest is the input of a fulfillment strategy.
type CartRequest struct {
	JobID       string
	UserID      string
	Items       []Item
	Preferences string
}

// CartResult summarizes a strategy run.
type CartResult struct {
	Success          bool
	ShareURL         string
	ErrorMessage     string
	ItemsAdded       int
	SelectedProducts []SelectedProduct
}
