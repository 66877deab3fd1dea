package catalog

import (
	"github.com/go-faster/errors"

	"github.com/xenking/kicks-pos/internal/storage/memory"
)

// Stores are the in-memory stores opened from a catalog.
type Stores struct {
	Products  *memory.ProductStore
	Customers *memory.CustomerStore
	Tickets   *memory.TicketStore
	Operators *memory.OperatorStore
}

// Open validates c and seeds fresh stores with it. The ticket store starts
// empty.
func (c *Catalog) Open() (*Stores, error) {
	if problems := Validate(c); len(problems) > 0 {
		return nil, errors.Errorf("catalog has %d problem(s), first: %s", len(problems), problems[0])
	}

	products, err := memory.NewProductStore(c.Products...)
	if err != nil {
		return nil, errors.Wrap(err, "seed products")
	}
	customers, err := memory.NewCustomerStore(c.Customers...)
	if err != nil {
		return nil, errors.Wrap(err, "seed customers")
	}
	operators, err := memory.NewOperatorStore(c.Operators...)
	if err != nil {
		return nil, errors.Wrap(err, "seed operators")
	}

	return &Stores{
		Products:  products,
		Customers: customers,
		Tickets:   memory.NewTicketStore(),
		Operators: operators,
	}, nil
}
