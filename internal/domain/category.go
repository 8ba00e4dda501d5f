package domain

// CategoryID identifies a ticket category and doubles as the panel button custom id.
type CategoryID string

const (
	CategoryGeneralSupport    CategoryID = "general_support"
	CategoryTechnicalSupport  CategoryID = "technical_support"
	CategoryPaymentIssues     CategoryID = "payment_issues"
	CategoryBusinessInquiries CategoryID = "business_inquiries"
)

// Category is an intake category shown on the support panel.
type Category struct {
	ID    CategoryID
	Label string
	Emoji string
}

var categories = []Category{
	{ID: CategoryGeneralSupport, Label: "General Support", Emoji: "🟢"},
	{ID: CategoryTechnicalSupport, Label: "Technical Support", Emoji: "🔧"},
	{ID: CategoryPaymentIssues, Label: "Payment Issues", Emoji: "💳"},
	{ID: CategoryBusinessInquiries, Label: "Business Inquiries", Emoji: "💼"},
}

var categoryIndex = func() map[CategoryID]Category {
	idx := make(map[CategoryID]Category, len(categories))
	for _, c := range categories {
		idx[c.ID] = c
	}
	return idx
}()

// Categories returns the registered categories in panel order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ResolveCategory looks up the category bound to an interaction id.
func ResolveCategory(id string) (Category, bool) {
	c, ok := categoryIndex[CategoryID(id)]
	return c, ok
}
