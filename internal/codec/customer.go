package codec

import (
	"github.com/go-faster/jx"

	"github.com/xenking/kicks-pos/internal/domain/customer"
)

// EncodeCustomer writes c.
func EncodeCustomer(e *jx.Encoder, c customer.Customer) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(c.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
		e.Field("email", func(e *jx.Encoder) { e.Str(c.Email) })
		e.Field("phone", func(e *jx.Encoder) { e.Str(c.Phone) })
		e.Field("created_at", func(e *jx.Encoder) { Time(e, c.CreatedAt) })
		e.Field("total_purchases", func(e *jx.Encoder) { e.Int(c.TotalPurchases) })
		e.Field("total_spent", func(e *jx.Encoder) { Money(e, c.TotalSpent) })
	})
}

// EncodeCustomers writes a JSON array of customers.
func EncodeCustomers(e *jx.Encoder, cs []customer.Customer) {
	e.Arr(func(e *jx.Encoder) {
		for _, c := range cs {
			EncodeCustomer(e, c)
		}
	})
}

// DecodeCustomer reads a customer object including its stats, as found in
// seed catalogs.
func DecodeCustomer(d *jx.Decoder) (customer.Customer, error) {
	var c customer.Customer
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			c.ID, err = DecodeID(d)
		case "name":
			c.Name, err = d.Str()
		case "email":
			c.Email, err = d.Str()
		case "phone":
			c.Phone, err = DecodeID(d)
		case "created_at":
			c.CreatedAt, err = DecodeTime(d)
		case "total_purchases":
			c.TotalPurchases, err = d.Int()
		case "total_spent":
			c.TotalSpent, err = DecodeDecimal(d)
		default:
			return d.Skip()
		}
		return field(key, err)
	})
	return c, err
}

// DecodeCustomerPatch reads the contact fields of a customer. Stats are
// not patchable and are skipped.
func DecodeCustomerPatch(d *jx.Decoder) (customer.Patch, error) {
	var p customer.Patch
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			p.Name, err = DecodeStringPtr(d)
		case "email":
			p.Email, err = DecodeStringPtr(d)
		case "phone":
			var phone string
			phone, err = DecodeID(d)
			p.Phone = &phone
		default:
			return d.Skip()
		}
		return field(key, err)
	})
	return p, err
}
