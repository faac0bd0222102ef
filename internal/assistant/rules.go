package assistant

// DefaultRules is the marketplace ruleset. Order matters: more specific
// topics sit above the generic greeting so "hi, help with gst" routes to the
// GST answer.
func DefaultRules() []Rule {
	return []Rule{
		{
			Triggers: []string{"gst", "tax", "gstin"},
			Response: "For GST support, head to the GST Compliance section. You can register your GSTIN, track filing deadlines, and download invoice-ready reports from there.",
		},
		{
			Triggers: []string{"loan", "financ", "credit", "working capital"},
			Response: "You can explore working-capital loans under Financing. Compare lender offers, check eligibility, and apply with your business documents in one place.",
		},
		{
			Triggers: []string{"bulk order", "order", "wholesale"},
			Response: "To place a bulk order, open a product listing and choose Bulk Order. You can set quantity, request quotes, and track order status from your dashboard.",
		},
		{
			Triggers: []string{"shipping", "logistics", "delivery", "courier"},
			Response: "Logistics partners are listed under Shipping. Select a partner at checkout to get pickup scheduling and consignment tracking for your orders.",
		},
		{
			Triggers: []string{"product", "listing", "catalog"},
			Response: "You can add or edit product listings from My Catalog. Complete listings with prices and minimum order quantities rank higher in the directory.",
		},
		{
			Triggers: []string{"payment", "invoice", "refund"},
			Response: "Payments and invoices live under Transactions. For refunds or disputed payments, raise a ticket from the specific order page.",
		},
		{
			Triggers: []string{"hello", "hi", "hey", "namaste"},
			Response: "Hello! I can help you with GST, financing, bulk orders, logistics, and product listings. What do you need?",
		},
	}
}

// DefaultFallback is returned when no rule matches.
const DefaultFallback = "I'm not sure about that yet. Try asking about GST, loans, bulk orders, shipping, or product listings. You can also reach out to another business directly via chat."

// Default returns the responder wired with the stock marketplace ruleset.
func Default() *RuleResponder {
	return NewRuleResponder(DefaultRules(), DefaultFallback)
}
