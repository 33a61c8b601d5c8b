package dto

// AddStockRequest entrada de stock: crea un lote nuevo del producto.
type AddStockRequest struct {
	ProductID      string `json:"product_id"`
	LotNumber      string `json:"lot_number"`
	Quantity       int    `json:"quantity"`
	Shade          string `json:"shade"`
	Caliber        string `json:"caliber"`
	ExpirationDate string `json:"expiration_date"` // RFC 3339, opcional
	InvoiceNumber  string `json:"invoice_number"`
	Supplier       string `json:"supplier"`
}

// StockExitRequest salida física contra un pedido: consume reservas y
// decrementa el stock en mano.
type StockExitRequest struct {
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

// LotStockDTO vista por lote de un producto.
type LotStockDTO struct {
	LotID     string `json:"lot_id"`
	LotNumber string `json:"lot_number"`
	OnHand    int    `json:"on_hand"`
	Reserved  int    `json:"reserved"`
	Available int    `json:"available"`
}

// ProductStockDTO stock agregado de un producto con detalle por lote.
type ProductStockDTO struct {
	ProductID      string        `json:"product_id"`
	TotalStock     int           `json:"total_stock"`
	TotalReserved  int           `json:"total_reserved"`
	AvailableStock int           `json:"available_stock"`
	Lots           []LotStockDTO `json:"lots"`
}
