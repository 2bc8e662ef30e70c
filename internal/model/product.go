package model

// Product represents an item in the catalogue.
//
// Every field is nullable so the JSON representation can carry explicit nulls:
// a product is created without an id and the store assigns one on insert.
type Product struct {
	ID          *int64   `json:"id" db:"id"`
	Name        *string  `json:"name" db:"name"`
	Description *string  `json:"description" db:"description"`
	Price       *float64 `json:"price" db:"price"`
	Quantity    *int     `json:"quantity" db:"quantity"`
}

// GetID returns the product ID or zero if it has not been assigned.
func (p *Product) GetID() int64 {
	if p == nil || p.ID == nil {
		return 0
	}
	return *p.ID
}

// GetName returns the product name or an empty string.
func (p *Product) GetName() string {
	if p == nil || p.Name == nil {
		return ""
	}
	return *p.Name
}

// GetDescription returns the product description or an empty string.
func (p *Product) GetDescription() string {
	if p == nil || p.Description == nil {
		return ""
	}
	return *p.Description
}

// GetPrice returns the product price or zero.
func (p *Product) GetPrice() float64 {
	if p == nil || p.Price == nil {
		return 0
	}
	return *p.Price
}

// GetQuantity returns the stored quantity or zero.
func (p *Product) GetQuantity() int {
	if p == nil || p.Quantity == nil {
		return 0
	}
	return *p.Quantity
}

// Clone returns a deep copy of the product.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := &Product{}
	if p.ID != nil {
		id := *p.ID
		c.ID = &id
	}
	if p.Name != nil {
		name := *p.Name
		c.Name = &name
	}
	if p.Description != nil {
		desc := *p.Description
		c.Description = &desc
	}
	if p.Price != nil {
		price := *p.Price
		c.Price = &price
	}
	if p.Quantity != nil {
		qty := *p.Quantity
		c.Quantity = &qty
	}
	return c
}

// Overwrite replaces the mutable fields of p with those of src. The ID is left untouched.
func (p *Product) Overwrite(src *Product) {
	c := src.Clone()
	p.Name = c.Name
	p.Description = c.Description
	p.Price = c.Price
	p.Quantity = c.Quantity
}

// HasStock reports whether the stored quantity covers the requested count.
// A product without a quantity is treated as holding zero units.
func (p *Product) HasStock(count int) bool {
	return p.GetQuantity() >= count
}
