package domain

// TypeEntry is one known document type. Name is the lookup key: matching
// during classification is case-insensitive, while confirm-type dedupes by
// exact name only.
type TypeEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultTaxonomy seeds a fresh taxonomy store.
func DefaultTaxonomy() []TypeEntry {
	return []TypeEntry{
		{Name: "invoice", Description: "Счёт на оплату"},
		{Name: "contract", Description: "Договор или соглашение"},
		{Name: "report", Description: "Отчёт или акт выполненных работ"},
	}
}
