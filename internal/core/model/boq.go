package model

// BOQItem is one line of the structured bill-of-quantities extracted from a
// generated answer.
type BOQItem struct {
	SKU         string `json:"sku"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
	Unit        string `json:"unit,omitempty"`
	Notes       string `json:"notes,omitempty"`
}
