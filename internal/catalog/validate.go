package catalog

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/xenking/kicks-pos/internal/domain/auth"
)

const skuFilterFPR = 0.001

// Problem is one validation finding in a catalog.
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string {
	return p.Path + ": " + p.Message
}

// Validate reports every problem found in c. An empty result means the
// catalog can be opened.
func Validate(c *Catalog) []Problem {
	var problems []Problem
	report := func(path, format string, args ...any) {
		problems = append(problems, Problem{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	productIDs := make(map[string]int, len(c.Products))
	for i, p := range c.Products {
		path := fmt.Sprintf("products[%d]", i)
		if strings.TrimSpace(p.Brand) == "" || strings.TrimSpace(p.Model) == "" {
			report(path, "brand and model are required")
		}
		if err := p.Validate(); err != nil {
			report(path, "%s", err)
		}
		if p.ID != "" {
			if j, ok := productIDs[p.ID]; ok {
				report(path, "id %q already used by products[%d]", p.ID, j)
			} else {
				productIDs[p.ID] = i
			}
		}
	}
	for _, dup := range duplicateSKUs(c) {
		report(fmt.Sprintf("products[%d]", dup.index), "sku %q already used by products[%d]", dup.sku, dup.first)
	}

	customerIDs := make(map[string]int, len(c.Customers))
	for i, cu := range c.Customers {
		path := fmt.Sprintf("customers[%d]", i)
		if err := cu.Validate(); err != nil {
			report(path, "%s", err)
		}
		if cu.TotalPurchases < 0 || cu.TotalSpent.IsNegative() {
			report(path, "purchase stats must not be negative")
		}
		if cu.ID != "" {
			if j, ok := customerIDs[cu.ID]; ok {
				report(path, "id %q already used by customers[%d]", cu.ID, j)
			} else {
				customerIDs[cu.ID] = i
			}
		}
	}

	usernames := make(map[string]int, len(c.Operators))
	for i, op := range c.Operators {
		path := fmt.Sprintf("operators[%d]", i)
		key := strings.ToLower(op.Username)
		if key == "" {
			report(path, "username is required")
		} else if j, ok := usernames[key]; ok {
			report(path, "username %q already used by operators[%d]", op.Username, j)
		} else {
			usernames[key] = i
		}
		if len(op.PasswordHash) == 0 {
			report(path, "password or password_hash is required")
		}
	}
	if !hasAdmin(c.Operators) {
		report("operators", "at least one admin operator is required")
	}

	return problems
}

type skuDuplicate struct {
	sku   string
	index int
	first int
}

// duplicateSKUs finds products sharing a SKU, compared case-insensitively.
// The bloom filter only nominates candidates; each is confirmed by scanning
// the earlier products.
func duplicateSKUs(c *Catalog) []skuDuplicate {
	if len(c.Products) == 0 {
		return nil
	}
	filter := bloom.NewWithEstimates(uint(len(c.Products)), skuFilterFPR)

	var dups []skuDuplicate
	for i, p := range c.Products {
		sku := strings.ToLower(p.SKU)
		if sku == "" {
			continue
		}
		if !filter.TestAndAddString(sku) {
			continue
		}
		for j := range i {
			if strings.EqualFold(c.Products[j].SKU, p.SKU) {
				dups = append(dups, skuDuplicate{sku: p.SKU, index: i, first: j})
				break
			}
		}
	}
	return dups
}

func hasAdmin(ops []auth.Operator) bool {
	for _, op := range ops {
		if op.Role == auth.RoleAdmin {
			return true
		}
	}
	return false
}
