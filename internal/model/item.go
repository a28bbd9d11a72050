package model

// Category groups item types.
type Category string

// Item type categories.
const (
	CategoryWeapon        Category = "weapon"
	CategoryVehicle       Category = "vehicle"
	CategoryAmmunition    Category = "ammunition"
	CategoryCommunication Category = "communication"
	CategoryMedical       Category = "medical"
	CategoryOther         Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryWeapon,
	CategoryVehicle,
	CategoryAmmunition,
	CategoryCommunication,
	CategoryMedical,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryWeapon, CategoryVehicle, CategoryAmmunition,
		CategoryCommunication, CategoryMedical, CategoryOther:
		return true
	}
	return false
}

// ItemType is a kind of trackable equipment, counted by quantity.
type ItemType struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
}
