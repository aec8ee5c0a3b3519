package dto

type AdjustStockInput struct {
	ItemID        string `json:"-"`
	Delta         int    `json:"delta"`
	Reason        string `json:"reason"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
}

type ForceSetInput struct {
	ItemID   string `json:"-"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

type PurchaseLine struct {
	PartCode string
	Quantity int
}

// ReceivePurchaseInput restocks by part code, as announced by purchasing.
// All lines of one purchase are applied together or not at all.
type ReceivePurchaseInput struct {
	PurchaseID string
	Lines      []PurchaseLine
}
