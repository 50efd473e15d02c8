package domain

// Product represents an inventory item as stored by the backend. The id is
// assigned on creation and is opaque to the panel; an empty ImageURL means
// the product has no image attached.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name" form:"name"`
	Description string  `json:"description" form:"description"`
	ImageURL    string  `json:"imageUrl"`
	Price       float64 `json:"price" form:"price"`
	Quantity    int     `json:"quantity" form:"quantity"`
}

// ProductDraft carries the editable fields of a product: everything except
// the backend-assigned id and the image, which travels separately.
type ProductDraft struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}
