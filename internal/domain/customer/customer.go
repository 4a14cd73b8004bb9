package customer

import "time"

// Ref is a reference to an upstream entity that may or may not have been expanded
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// IsZero reports whether the reference points nowhere
func (r Ref) IsZero() bool {
	return r.ID == "" && r.Name == ""
}

// Customer is a subscription customer as served by the upstream backend
type Customer struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	MilkType    Ref       `json:"milkType"`
	Subcategory Ref       `json:"subcategory"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// CountActive returns how many customers are active
func CountActive(customers []Customer) int {
	n := 0
	for _, c := range customers {
		if c.IsActive {
			n++
		}
	}
	return n
}
