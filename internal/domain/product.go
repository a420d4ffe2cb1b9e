package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          int64           `json:"id" db:"id"`
	Slug        string          `json:"slug" db:"slug"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	CategoryID  *int64          `json:"category_id" db:"category_id"`
	PriceFrom   decimal.Decimal `json:"price_from" db:"price_from"`
	Active      bool            `json:"is_active" db:"is_active"`
}

type Variant struct {
	ID        int64           `json:"id" db:"id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Size      string          `json:"size" db:"size"`
	Color     string          `json:"color" db:"color"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
}

// Label is "size / color", or "Única" when the variant has neither.
func (v Variant) Label() string {
	switch {
	case v.Size != "" && v.Color != "":
		return v.Size + " / " + v.Color
	case v.Size != "":
		return v.Size
	case v.Color != "":
		return v.Color
	}
	return "Única"
}

type ProductImage struct {
	URL       string `json:"url" db:"url"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
}

type ProductDetail struct {
	Product  Product        `json:"product"`
	Variants []Variant      `json:"variants"`
	Images   []ProductImage `json:"images"`
}

type Category struct {
	ID   int64  `json:"id" db:"id"`
	Slug string `json:"slug" db:"slug"`
	Name string `json:"name" db:"name"`
}

// CatalogItem is one card of the catalog grid. CoverURL is empty when the
// product has no images.
type CatalogItem struct {
	ProductID         int64           `json:"product_id" db:"product_id"`
	Slug              string          `json:"slug" db:"slug"`
	Name              string          `json:"name" db:"name"`
	PriceFrom         decimal.Decimal `json:"price_from" db:"price_from"`
	VariantsAvailable int             `json:"variants_available" db:"variants_available"`
	CoverURL          string          `json:"cover_url" db:"cover_url"`
}
