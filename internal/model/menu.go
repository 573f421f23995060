package model

// MenuItem is keyed by its id in the menu document.
type MenuItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Menu maps pizza id to item.
type Menu map[string]MenuItem
