package product

import "time"

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }

// Review is embedded in a product. The author name is a snapshot taken when
// the review was written so renaming a user does not rewrite history.
type Review struct {
	User      int    `json:"user"`
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Product represents a catalog item and maps to the `public.product` table.
// Reviews live inside the product row; Rating and NumReviews are derived
// from them and recomputed on every review mutation.
type Product struct {
	ID            int      `json:"productId"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Category      string   `json:"category"`
	Brand         string   `json:"brand"`
	Material      string   `json:"material,omitempty"`
	Color         string   `json:"color,omitempty"`
	CountInStock  int      `json:"countInStock"`
	IsAvailable   bool     `json:"isAvailable"`
	Featured      bool     `json:"featured"`
	Images        []string `json:"images"`
	Reviews       []Review `json:"reviews"`
	Rating        float64  `json:"rating"`
	NumReviews    int      `json:"numReviews"`
	TotalSold     int      `json:"totalSold"`
	CreatedAt     string   `json:"createdAt,omitempty"`
	UpdatedAt     string   `json:"updatedAt,omitempty"`
}

// AllowedCategories is the closed set of product categories.
var AllowedCategories = []string{
	"sofa",
	"bed",
	"table",
	"chair",
	"cabinet",
	"desk",
	"other",
}

func validCategory(c string) bool {
	for _, allowed := range AllowedCategories {
		if c == allowed {
			return true
		}
	}
	return false
}

// ListFilter narrows and orders a catalog listing.
type ListFilter struct {
	Category  string
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	Sort      string
	Page      int
	Limit     int
}

// ListResult is the paginated listing response shape.
type ListResult struct {
	Products      []Product `json:"products"`
	CurrentPage   int       `json:"currentPage"`
	TotalPages    int       `json:"totalPages"`
	TotalProducts int       `json:"totalProducts"`
}
