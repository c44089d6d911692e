package category

// Category groups products for storefront browsing.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
