// Package catalog loads seed catalogs: the operators, products and
// customers a point of sale starts with.
package catalog

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"

	"github.com/xenking/kicks-pos/db"
	"github.com/xenking/kicks-pos/internal/codec"
	"github.com/xenking/kicks-pos/internal/domain/auth"
	"github.com/xenking/kicks-pos/internal/domain/customer"
	"github.com/xenking/kicks-pos/internal/domain/product"
)

const readBufferSize = 64 << 10

// Catalog is a decoded seed document.
type Catalog struct {
	Operators []auth.Operator
	Products  []product.Product
	Customers []customer.Customer
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	c, err := Decode(bytes.NewReader(db.Catalog))
	if err != nil {
		return nil, errors.Wrap(err, "decode embedded catalog")
	}
	return c, nil
}

// Load reads the catalog at path. Files ending in .gz are decompressed.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	c, err := Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return c, nil
}

// Decode reads a catalog document from r. Plaintext operator passwords are
// hashed while decoding.
func Decode(r io.Reader) (*Catalog, error) {
	var c Catalog
	d := jx.Decode(r, readBufferSize)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "operators":
			return decodeArray(d, key, func(d *jx.Decoder) error {
				op, err := decodeOperator(d)
				c.Operators = append(c.Operators, op)
				return err
			})
		case "products":
			return decodeArray(d, key, func(d *jx.Decoder) error {
				p, err := codec.DecodeProduct(d)
				c.Products = append(c.Products, p)
				return err
			})
		case "customers":
			return decodeArray(d, key, func(d *jx.Decoder) error {
				cu, err := codec.DecodeCustomer(d)
				c.Customers = append(c.Customers, cu)
				return err
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func decodeArray(d *jx.Decoder, name string, f func(d *jx.Decoder) error) error {
	var i int
	return d.Arr(func(d *jx.Decoder) error {
		if err := f(d); err != nil {
			return errors.Wrapf(err, "%s[%d]", name, i)
		}
		i++
		return nil
	})
}

func decodeOperator(d *jx.Decoder) (auth.Operator, error) {
	var (
		op       auth.Operator
		role     string
		password string
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "username":
			op.Username, err = d.Str()
		case "role":
			role, err = d.Str()
		case "password":
			password, err = d.Str()
		case "password_hash":
			var hash string
			hash, err = d.Str()
			op.PasswordHash = []byte(hash)
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return op, err
	}

	if op.Role, err = auth.ParseRole(role); err != nil {
		return op, err
	}
	if password != "" && len(op.PasswordHash) == 0 {
		if op.PasswordHash, err = auth.HashPassword(password); err != nil {
			return op, errors.Wrapf(err, "operator %s", strconv.Quote(op.Username))
		}
	}
	return op, nil
}
