package types

// NewOrderInput carries the fields a client may set when placing an order.
type NewOrderInput struct {
	ProductID int64
	Quantity  int64
}

// EditOrderInput is the partial edit applied by PatchOrder. All three fields are overwritten.
type EditOrderInput struct {
	Status   string
	Complete bool
	Quantity int64
}

// ImportResult summarises a committed CSV batch.
type ImportResult struct {
	BatchID  string  `json:"batchId"`
	Imported int     `json:"imported"`
	OrderIDs []int64 `json:"orderIds"`
}
