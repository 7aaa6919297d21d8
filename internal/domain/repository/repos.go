package repository

// Repos agrupa los repositorios atados a una misma conexión o transacción.
type Repos struct {
	Products  ProductRepository
	Prices    PriceRepository
	Images    ImageRepository
	Stock     StockUnitRepository
	Carts     CartRepository
	CartItems CartItemRepository
	Orders    OrderRepository
	Users     UserRepository
	Jumbotron JumbotronRepository
}
