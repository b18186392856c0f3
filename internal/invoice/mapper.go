// Package invoice translates a template evaluation's extracted field map into
// the field mapping the invoice store consumes. Every function here is pure;
// persistence belongs to the caller.
package invoice

import (
	"context"
	"strconv"
	"strings"

	"github.com/invoicevault/template-engine/internal/entity"
	"github.com/invoicevault/template-engine/internal/match"
)

// Invoice column names.
const (
	ColOrderNumber      = "order_number"
	ColPurchaseDate     = "purchase_date"
	ColGrandTotal       = "grand_total"
	ColShippingHandling = "shipping_handling"
	ColEstimatedTax     = "estimated_tax"
	ColTotalBeforeTax   = "total_before_tax"
	ColPaymentMethod    = "payment_method"
	ColBillingAddress   = "billing_address"
	ColMerchantName     = "merchant_name"
	ColItems            = "items"
	ColTags             = "tags"
	ColCategories       = "categories"
)

// fieldMapping is the fixed template-field to invoice-column mapping.
var fieldMapping = map[string]string{
	"order_number":      ColOrderNumber,
	"purchase_date":     ColPurchaseDate,
	"grand_total":       ColGrandTotal,
	"shipping_handling": ColShippingHandling,
	"estimated_tax":     ColEstimatedTax,
	"total_before_tax":  ColTotalBeforeTax,
	"payment_method":    ColPaymentMethod,
	"billing_address":   ColBillingAddress,
	"merchant_name":     ColMerchantName,
}

var numericColumns = map[string]bool{
	ColGrandTotal:       true,
	ColShippingHandling: true,
	ColEstimatedTax:     true,
	ColTotalBeforeTax:   true,
}

// ToInvoiceFields maps extracted data onto invoice columns. Date columns get
// the full multi-format parse, numeric columns the currency coercion; any
// value that cannot be coerced is omitted; partial extraction is the
// expected steady state, not an error.
func ToInvoiceFields(extracted map[string]any) map[string]any {
	out := make(map[string]any)

	for templateField, column := range fieldMapping {
		value, ok := extracted[templateField]
		if !ok {
			continue
		}

		switch {
		case column == ColPurchaseDate:
			s, ok := value.(string)
			if !ok {
				continue
			}
			parsed, ok := match.ParseDate(s)
			if !ok {
				continue
			}
			out[column] = parsed

		case numericColumns[column]:
			switch v := value.(type) {
			case float64:
				out[column] = v
			case string:
				f, ok := match.ParseCurrency(v)
				if !ok {
					continue
				}
				out[column] = f
			}

		default:
			out[column] = value
		}
	}

	if items := materializeItemList(extracted); len(items) > 0 {
		out[ColItems] = items
	}
	if tags := stringList(extracted["tags"]); len(tags) > 0 {
		out[ColTags] = tags
	}
	if categories := stringList(extracted["categories"]); len(categories) > 0 {
		out[ColCategories] = categories
	}
	return out
}

// materializeItemList builds line items from item_details (preferred) or
// items, then backfills prices and types from the parallel item_prices and
// item_types arrays when present. A bare items+item_counts pair is the last
// fallback the legacy templates produce.
func materializeItemList(extracted map[string]any) []entity.LineItem {
	var items []entity.LineItem
	if raw, ok := extracted["item_details"].([]any); ok {
		items = make([]entity.LineItem, 0, len(raw))
		for _, entry := range raw {
			items = append(items, materializeItem(entry))
		}
	} else if raw, ok := extracted["items"].([]any); ok {
		counts := intList(extracted["item_counts"])
		items = make([]entity.LineItem, 0, len(raw))
		for i, entry := range raw {
			item := materializeItem(entry)
			// counts pair with scalar entries; structured ones carry their own
			if _, structured := entry.(map[string]any); !structured && i < len(counts) && counts[i] > 0 {
				item.Quantity = counts[i]
			}
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil
	}

	if prices := extracted["item_prices"]; prices != nil {
		for i, p := range anyList(prices) {
			if i >= len(items) {
				break
			}
			if f, ok := coercePrice(p); ok {
				items[i].UnitPrice = f
			}
		}
	}
	if types := stringList(extracted["item_types"]); len(types) > 0 {
		for i, t := range types {
			if i >= len(items) {
				break
			}
			items[i].ItemType = t
		}
	}
	if category, ok := extracted["category"].(string); ok {
		for i := range items {
			if items[i].ItemType == "" {
				items[i].ItemType = category
			}
		}
	}
	return items
}

// materializeItem converts one raw array entry. Structured entries come from
// capture groups; scalar entries carry only a product name.
func materializeItem(entry any) entity.LineItem {
	item := entity.LineItem{Quantity: 1, Condition: "New"}

	m, ok := entry.(map[string]any)
	if !ok {
		if s, ok := entry.(string); ok {
			item.ProductName = strings.TrimSpace(s)
		}
		return item
	}

	if name, ok := stringValue(m, "product_name", "name"); ok {
		item.ProductName = strings.TrimSpace(name)
	} else {
		item.ProductName = "Unknown item"
	}
	if qty, ok := stringValue(m, "quantity"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(qty)); err == nil && n > 0 {
			item.Quantity = n
		}
	}
	if price, ok := m["unit_price"]; ok {
		if f, valid := coercePrice(price); valid {
			item.UnitPrice = f
		}
	} else if price, ok := m["price"]; ok {
		if f, valid := coercePrice(price); valid {
			item.UnitPrice = f
		}
	}
	if condition, ok := stringValue(m, "condition"); ok && condition != "" {
		item.Condition = condition
	}
	if itemType, ok := stringValue(m, "item_type"); ok {
		item.ItemType = itemType
	}
	if link, ok := stringValue(m, "product_link"); ok {
		item.ProductLink = link
	}
	return item
}

func coercePrice(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		return match.ParseCurrency(t)
	}
	return 0, false
}

func stringValue(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch t := v.(type) {
			case string:
				return t, true
			case float64:
				return strconv.FormatFloat(t, 'f', -1, 64), true
			}
		}
	}
	return "", false
}

func anyList(v any) []any {
	list, _ := v.([]any)
	return list
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if s, ok := entry.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func intList(v any) []int {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(list))
	for _, entry := range list {
		switch t := entry.(type) {
		case int:
			out = append(out, t)
		case float64:
			out = append(out, int(t))
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
				out = append(out, n)
			} else {
				out = append(out, 1)
			}
		default:
			out = append(out, 1)
		}
	}
	return out
}

// TaxonomyStore is the find-or-create-by-name contract the external invoice
// store must support for tag and category arrays.
type TaxonomyStore interface {
	FindOrCreateTag(ctx context.Context, name string) error
	FindOrCreateCategory(ctx context.Context, name string) error
}

// ApplyTaxonomy resolves the tags/categories lists of a mapped field set
// against the store. Individual failures abort: taxonomy writes are the
// caller's transaction.
func ApplyTaxonomy(ctx context.Context, store TaxonomyStore, fields map[string]any) error {
	if tags, ok := fields[ColTags].([]string); ok {
		for _, tag := range tags {
			if err := store.FindOrCreateTag(ctx, tag); err != nil {
				return err
			}
		}
	}
	if categories, ok := fields[ColCategories].([]string); ok {
		for _, category := range categories {
			if err := store.FindOrCreateCategory(ctx, category); err != nil {
				return err
			}
		}
	}
	return nil
}
