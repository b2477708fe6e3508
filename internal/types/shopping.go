package types

// ShoppingItem is one aggregated line of a shopping list: the total amount of
// an ingredient across every recipe in the cart.
type ShoppingItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int64  `json:"amount"`
}
