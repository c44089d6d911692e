package customer

// Customer is created fresh for every order; there is no dedup by phone or name.
type Customer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}
