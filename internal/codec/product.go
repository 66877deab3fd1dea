package codec

import (
	"strconv"

	"github.com/go-faster/jx"

	"github.com/xenking/kicks-pos/internal/domain/product"
)

// EncodeProduct writes p with its derived stock figures.
func EncodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("sku", func(e *jx.Encoder) { e.Str(p.SKU) })
		e.Field("brand", func(e *jx.Encoder) { e.Str(p.Brand) })
		e.Field("model", func(e *jx.Encoder) { e.Str(p.Model) })
		e.Field("color", func(e *jx.Encoder) { e.Str(p.Color) })
		e.Field("price", func(e *jx.Encoder) { Money(e, p.Price) })
		e.Field("sizes", func(e *jx.Encoder) { encodeSizes(e, p.Sizes) })
		e.Field("total_stock", func(e *jx.Encoder) { e.Int(p.TotalStock()) })
		e.Field("in_stock", func(e *jx.Encoder) { e.Bool(p.InStock()) })
	})
}

// EncodeProducts writes a JSON array of products.
func EncodeProducts(e *jx.Encoder, ps []product.Product) {
	e.Arr(func(e *jx.Encoder) {
		for _, p := range ps {
			EncodeProduct(e, p)
		}
	})
}

func encodeSizes(e *jx.Encoder, sizes []product.Size) {
	e.Arr(func(e *jx.Encoder) {
		for _, s := range sizes {
			e.Obj(func(e *jx.Encoder) {
				e.Field("size", func(e *jx.Encoder) { e.Str(s.Label) })
				e.Field("stock", func(e *jx.Encoder) { e.Int(s.Stock) })
			})
		}
	})
}

// DecodeProduct reads a product object. Derived fields are ignored.
func DecodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = DecodeID(d)
		case "sku":
			p.SKU, err = d.Str()
		case "brand":
			p.Brand, err = d.Str()
		case "model":
			p.Model, err = d.Str()
		case "color":
			p.Color, err = d.Str()
		case "price":
			p.Price, err = DecodeDecimal(d)
		case "sizes":
			p.Sizes, err = decodeSizes(d)
		default:
			return d.Skip()
		}
		return field(key, err)
	})
	return p, err
}

// DecodeProductPatch reads a partial product. Absent fields stay nil.
func DecodeProductPatch(d *jx.Decoder) (product.Patch, error) {
	var pt product.Patch
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "sku":
			pt.SKU, err = DecodeStringPtr(d)
		case "brand":
			pt.Brand, err = DecodeStringPtr(d)
		case "model":
			pt.Model, err = DecodeStringPtr(d)
		case "color":
			pt.Color, err = DecodeStringPtr(d)
		case "price":
			price, perr := DecodeDecimal(d)
			pt.Price, err = &price, perr
		case "sizes":
			pt.Sizes, err = decodeSizes(d)
			if err == nil && pt.Sizes == nil {
				pt.Sizes = []product.Size{}
			}
		default:
			return d.Skip()
		}
		return field(key, err)
	})
	return pt, err
}

func decodeSizes(d *jx.Decoder) ([]product.Size, error) {
	var (
		sizes []product.Size
		i     int
	)
	err := d.Arr(func(d *jx.Decoder) error {
		var s product.Size
		err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "size":
				s.Label, err = DecodeID(d)
			case "stock":
				s.Stock, err = d.Int()
			default:
				return d.Skip()
			}
			return field(key, err)
		})
		if err != nil {
			return field(strconv.Itoa(i), err)
		}
		sizes = append(sizes, s)
		i++
		return nil
	})
	return sizes, err
}
