package loader

import (
	"github.com/invoicevault/template-engine/constants"
	"github.com/invoicevault/template-engine/internal/entity"
)

// BuiltinTemplates returns the stock vendor templates shipped with the
// engine. They double as fixtures for the debug CLI and tests.
func BuiltinTemplates() []entity.Template {
	return []entity.Template{
		AmazonTemplate(),
		WalmartTemplate(),
		GenericInvoiceTemplate(),
	}
}

func required() *entity.ValidationConfig {
	return &entity.ValidationConfig{Required: true}
}

func AmazonTemplate() entity.Template {
	return entity.Template{
		Name:        "Amazon Invoice Template",
		Vendor:      "Amazon",
		Version:     "1.0",
		Description: "Template for extracting data from Amazon invoices",
		Identification: entity.Identification{
			Markers: []entity.Marker{
				{Text: "amazon", Required: true},
				{Text: "order", Required: false},
			},
			MinMatchScore: 0.3,
		},
		Fields: []entity.Field{
			{
				FieldName:   "order_number",
				DisplayName: "Order Number",
				DataType:    constants.TypeString,
				Extraction: entity.ExtractionConfig{
					Regex:            `order\s*#?\s*:?\s*([A-Z0-9\-]+)`,
					AlternativeRegex: `order\s*number\s*:?\s*([A-Z0-9\-]+)`,
					AdditionalPatterns: []string{
						`order\s*id\s*:?\s*([A-Z0-9\-]+)`,
						`#\s*([A-Z0-9\-]+)`,
					},
					PostProcessing: "trim",
				},
				Validation: required(),
			},
			{
				FieldName:   "purchase_date",
				DisplayName: "Purchase Date",
				DataType:    constants.TypeDate,
				Extraction: entity.ExtractionConfig{
					Regex:            `order\s*date\s*:?\s*([A-Za-z]+\s+\d{1,2},?\s+\d{4})`,
					AlternativeRegex: `date\s*of\s*purchase\s*:?\s*(\d{1,2}/\d{1,2}/\d{4})`,
					AdditionalPatterns: []string{
						`date\s*:?\s*([A-Za-z]+\s+\d{1,2},?\s+\d{4})`,
						`(\d{1,2}/\d{1,2}/\d{4})`,
					},
					PostProcessing: "trim",
				},
			},
			{
				FieldName:   "merchant_name",
				DisplayName: "Merchant",
				DataType:    constants.TypeString,
				Extraction: entity.ExtractionConfig{
					Regex:            `sold\s*by\s*:?\s*([^\n]+)`,
					AlternativeRegex: `seller\s*:?\s*([^\n]+)`,
					PostProcessing:   "trim",
				},
				DefaultValue: "Amazon",
			},
			{
				FieldName:   "grand_total",
				DisplayName: "Grand Total",
				DataType:    constants.TypeCurrency,
				Extraction: entity.ExtractionConfig{
					Regex:            `order\s*total\s*:?\s*\$?(\d+\.\d{2})`,
					AlternativeRegex: `grand\s*total\s*:?\s*\$?(\d+\.\d{2})`,
					AdditionalPatterns: []string{
						`total\s*:?\s*\$?(\d+\.\d{2})`,
						`total\s*\$?(\d+\.\d{2})`,
					},
					PostProcessing: "trim",
				},
				Validation: required(),
			},
			{
				FieldName:   "shipping_handling",
				DisplayName: "Shipping & Handling",
				DataType:    constants.TypeCurrency,
				Extraction: entity.ExtractionConfig{
					Regex:            `shipping\s*&?\s*handling\s*:?\s*\$?(\d+\.\d{2})`,
					AlternativeRegex: `shipping\s*:?\s*\$?(\d+\.\d{2})`,
					PostProcessing:   "trim",
				},
			},
			{
				FieldName:   "estimated_tax",
				DisplayName: "Estimated Tax",
				DataType:    constants.TypeCurrency,
				Extraction: entity.ExtractionConfig{
					Regex:            `estimated\s*tax\s*:?\s*\$?(\d+\.\d{2})`,
					AlternativeRegex: `tax\s*:?\s*\$?(\d+\.\d{2})`,
					PostProcessing:   "trim",
				},
			},
			{
				FieldName:   "items",
				DisplayName: "Items",
				DataType:    constants.TypeArray,
				Extraction: entity.ExtractionConfig{
					Regex: `(\d+)\s*x\s*([^$]+)\s*\$?(\d+\.\d{2})`,
					CaptureGroups: map[string]int{
						"quantity":     1,
						"product_name": 2,
						"unit_price":   3,
					},
				},
			},
			{
				FieldName:   "payment_method",
				DisplayName: "Payment Method",
				DataType:    constants.TypeString,
				Extraction: entity.ExtractionConfig{
					Regex:            `payment\s*method\s*:?\s*([^\n]+)`,
					AlternativeRegex: `paid\s*with\s*:?\s*([^\n]+)`,
					PostProcessing:   "trim",
				},
			},
			{
				FieldName:   "categories",
				DisplayName: "Categories",
				DataType:    constants.TypeArray,
				Extraction: entity.ExtractionConfig{
					Regex:          `electronics|books|clothing|grocery|home|office`,
					PostProcessing: "trim",
				},
				DefaultValue: []any{"Online Shopping"},
			},
		},
	}
}

func WalmartTemplate() entity.Template {
	return entity.Template{
		Name:        "Walmart Invoice Template",
		Vendor:      "Walmart",
		Version:     "1.0",
		Description: "Template for extracting data from Walmart invoices",
		Identification: entity.Identification{
			Markers: []entity.Marker{
				{Text: "walmart", Required: true},
				{Text: "receipt", Required: false},
			},
			MinMatchScore: 0.3,
		},
		Fields: []entity.Field{
			{
				FieldName:   "order_number",
				DisplayName: "Order/Receipt Number",
				DataType:    constants.TypeString,
				Extraction: entity.ExtractionConfig{
					Regex:            `receipt\s*#?\s*:?\s*(\w+\-?\d+)`,
					AlternativeRegex: `tc\s*#?\s*:?\s*(\w+\-?\d+)`,
					AdditionalPatterns: []string{
						`transaction\s*#?\s*:?\s*(\w+\-?\d+)`,
						`order\s*#?\s*:?\s*(\w+\-?\d+)`,
					},
					PostProcessing: "trim",
				},
				Validation: required(),
			},
			{
				FieldName:   "purchase_date",
				DisplayName: "Purchase Date",
				DataType:    constants.TypeDate,
				Extraction: entity.ExtractionConfig{
					Regex:            `(\d{1,2}/\d{1,2}/\d{2,4})\s*\d{1,2}:\d{2}`,
					AlternativeRegex: `date\s*:?\s*(\d{1,2}/\d{1,2}/\d{2,4})`,
					PostProcessing:   "trim",
				},
			},
			{
				FieldName:    "merchant_name",
				DisplayName:  "Merchant",
				DataType:     constants.TypeString,
				DefaultValue: "Walmart",
			},
			{
				FieldName:   "grand_total",
				DisplayName: "Grand Total",
				DataType:    constants.TypeCurrency,
				Extraction: entity.ExtractionConfig{
					Regex:            `total\s*\$?\s*(\d+\.\d{2})`,
					AlternativeRegex: `amount\s*\$?\s*(\d+\.\d{2})`,
					PostProcessing:   "trim",
				},
				Validation: required(),
			},
			{
				FieldName:   "estimated_tax",
				DisplayName: "Tax",
				DataType:    constants.TypeCurrency,
				Extraction: entity.ExtractionConfig{
					Regex:          `tax\s*\$?\s*(\d+\.\d{2})`,
					PostProcessing: "trim",
				},
			},
			{
				FieldName:   "items",
				DisplayName: "Items",
				DataType:    constants.TypeArray,
				Extraction: entity.ExtractionConfig{
					Regex: `(\d+)\s+([^$\n]+)\s+\$?(\d+\.\d{2})`,
					CaptureGroups: map[string]int{
						"quantity":     1,
						"product_name": 2,
						"unit_price":   3,
					},
				},
			},
			{
				FieldName:   "payment_method",
				DisplayName: "Payment Method",
				DataType:    constants.TypeString,
				Extraction: entity.ExtractionConfig{
					Regex:            `payment\s*type\s*:?\s*([^\n]+)`,
					AlternativeRegex: `(?:visa|mastercard|credit card|debit card|cash)`,
					PostProcessing:   "trim",
				},
			},
			{
				FieldName:    "categories",
				DisplayName:  "Categories",
				DataType:     constants.TypeArray,
				DefaultValue: []any{"Retail", "Grocery"},
			},
		},
	}
}

func GenericInvoiceTemplate() entity.Template {
	return entity.Template{
		Name:        "Generic Invoice Template",
		Vendor:      "Generic",
		Version:     "1.0",
		Description: "Template for extracting data from generic invoices",
		Identification: entity.Identification{
			Markers: []entity.Marker{
				{Text: "invoice"},
				{Text: "receipt"},
				{Text: "order"},
				{Text: "total"},
			},
			// lower threshold: the generic template should only win when
			// nothing vendor-specific matches
			MinMatchScore: 0.2,
		},
		Fields: []entity.Field{
			{
				FieldName:   "order_number",
				DisplayName: "Invoice/Order Number",
				DataType:    constants.TypeString,
				Extraction: entity.ExtractionConfig{
					Regex:            `(?:invoice|order|receipt)\s*(?:no|num|number|#)?\s*[\s:]*([a-zA-Z0-9\-_]+)`,
					AlternativeRegex: `(?:inv|ord|rcpt)[\s:]*#?\s*([a-zA-Z0-9\-_]+)`,
					AdditionalPatterns: []string{
						`#\s*([a-zA-Z0-9\-_]+)`,
						`number\s*:?\s*([a-zA-Z0-9\-_]+)`,
					},
					PostProcessing: "trim",
				},
			},
			{
				FieldName:   "purchase_date",
				DisplayName: "Date",
				DataType:    constants.TypeDate,
				Extraction: entity.ExtractionConfig{
					Regex:            `(?:date|issued|purchased)(?:d|ed)?\s*(?:on|at)?[\s:]*([a-zA-Z0-9/\-\., ]+)`,
					AlternativeRegex: `(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
					AdditionalPatterns: []string{
						`([a-zA-Z]{3,9}\s+\d{1,2},?\s+\d{4})`,
						`(\d{4}[/-]\d{1,2}[/-]\d{1,2})`,
					},
					PostProcessing: "trim",
				},
			},
			{
				FieldName:   "merchant_name",
				DisplayName: "Merchant/Vendor",
				DataType:    constants.TypeString,
				Extraction: entity.ExtractionConfig{
					Regex:            `(?:from|seller|vendor|merchant|company|business)[\s:]+([a-zA-Z0-9\s&.,]+)`,
					AlternativeRegex: `(?:bill|invoice)\s+from\s+([a-zA-Z0-9\s&.,]+)`,
					PostProcessing:   "trim",
				},
			},
			{
				FieldName:   "grand_total",
				DisplayName: "Total Amount",
				DataType:    constants.TypeCurrency,
				Extraction: entity.ExtractionConfig{
					Regex:            `(?:total|amount|sum|balance)(?:due|:|\s)+[$€£]?\s*(\d+[.,]\d{2})`,
					AlternativeRegex: `(?:grand|overall)\s+total[\s:]*[$€£]?\s*(\d+[.,]\d{2})`,
					AdditionalPatterns: []string{
						`(?:total|amount)(?:due|:|\s)+[$€£]?\s*(\d+)`,
						`[$€£]\s*(\d+[.,]\d{2})`,
					},
					PostProcessing: "trim",
				},
				Validation: required(),
			},
			{
				FieldName:   "shipping_handling",
				DisplayName: "Shipping & Handling",
				DataType:    constants.TypeCurrency,
				Extraction: entity.ExtractionConfig{
					Regex:            `(?:shipping|delivery|handling)(?:\s*&\s*|\s+)(?:fee|cost|charge)?[\s:]*[$€£]?\s*(\d+[.,]\d{2})`,
					AlternativeRegex: `s(?:hipping|delivery)[\s:]*[$€£]?\s*(\d+[.,]\d{2})`,
					PostProcessing:   "trim",
				},
			},
			{
				FieldName:   "estimated_tax",
				DisplayName: "Tax",
				DataType:    constants.TypeCurrency,
				Extraction: entity.ExtractionConfig{
					Regex:            `(?:tax|vat|sales\s+tax)[\s:]*[$€£]?\s*(\d+[.,]\d{2})`,
					AlternativeRegex: `(?:estimated\s+tax|gst|hst)[\s:]*[$€£]?\s*(\d+[.,]\d{2})`,
					PostProcessing:   "trim",
				},
			},
			{
				FieldName:   "items",
				DisplayName: "Items",
				DataType:    constants.TypeArray,
				Extraction: entity.ExtractionConfig{
					Regex: `(\d+)\s*x\s*([^$\n]+?)\s*[$€£]?\s*(\d+[.,]\d{2})`,
					CaptureGroups: map[string]int{
						"quantity":     1,
						"product_name": 2,
						"unit_price":   3,
					},
				},
			},
			{
				FieldName:   "payment_method",
				DisplayName: "Payment Method",
				DataType:    constants.TypeString,
				Extraction: entity.ExtractionConfig{
					Regex:            `(?:payment|paid)(?:method|type|via|with|by)?[\s:]*([a-zA-Z0-9\s]+)`,
					AlternativeRegex: `(?:visa|mastercard|american express|discover|credit card|debit card|cash|check|paypal)`,
					PostProcessing:   "trim",
				},
			},
			{
				FieldName:    "categories",
				DisplayName:  "Categories",
				DataType:     constants.TypeArray,
				DefaultValue: []any{"Uncategorized"},
			},
		},
	}
}
