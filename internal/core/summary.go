package core

// BudgetUsage is how much of a budget rule the matching expenses consume.
type BudgetUsage struct {
	Rule        BudgetRule `json:"rule"`
	SpentCents  int64      `json:"spentCents"`
	LeftCents   int64      `json:"leftCents"`
	PercentUsed int        `json:"percentUsed"`
}

// Summary is a compact overview of the expense list.
type Summary struct {
	Currency        Currency      `json:"currency"`
	MonthTotalCents int64         `json:"monthTotalCents"`
	AllTimeCents    int64         `json:"allTimeCents"`
	OverallLeft     *int64        `json:"overallLeftCents,omitempty"`
	Budgets         []BudgetUsage `json:"budgets"`
}
