package engine

import "github.com/roach88/storefront/internal/model"

// Snapshot is the durable part of State: the two persisted fragments.
type Snapshot struct {
	Cart   model.Cart
	Orders []model.Order
}

// Rehydrate replays a stored snapshot through the normal action vocabulary.
//
// Each stored line becomes one AddToCart followed, when the cart does not
// already hold the stored quantity, by UpdateCartQuantity. A product stored
// on several lines ends with the quantity of its last line. Each stored order becomes one AddOrder. Whatever the
// stored bytes contained, the restored state is one that live actions could
// have produced: duplicate lines collapse into one and non-positive
// quantities drop the line.
//
// Rehydrate should run before observers are subscribed so the replay is not
// written straight back to storage.
func Rehydrate(e *Engine, snap Snapshot) State {
	for _, line := range snap.Cart {
		e.Dispatch(AddToCart{Product: line.Product})
		if e.State().Cart.Quantity(line.Product.ID) != line.Quantity {
			e.Dispatch(UpdateCartQuantity{ProductID: line.Product.ID, Quantity: line.Quantity})
		}
	}
	for _, o := range snap.Orders {
		e.Dispatch(AddOrder{Order: o})
	}

	s := e.State()
	e.logger.Info("state rehydrated",
		"cart_lines", len(s.Cart),
		"orders", len(s.Orders),
		"version", e.Version(),
	)
	return s
}
