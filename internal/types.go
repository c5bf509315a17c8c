package internal

import "time"

type CatalogItem struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type Layout struct {
	HeaderRows int
	NameCol    int
	PriceCol   int
}

type Selection struct {
	Item        CatalogItem
	PromoPrice  int64
	DiscountPct float64
}

type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type SpecSheet struct {
	Query   string
	Results []SearchResult
	Text    string
}

type Draft struct {
	ID          string
	Item        CatalogItem
	PromoPrice  int64
	DiscountPct float64
	Specs       string
	Message     string
	Model       string
	CreatedAt   time.Time
}

type CatalogLoad struct {
	ID        string
	Source    string
	ItemCount int
	CreatedAt string
}
