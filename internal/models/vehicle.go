package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Vehicle is one catalog entry. Fields are set once by NewVehicle and only
// exposed through accessors, so a loaded catalog cannot be mutated record by record.
type Vehicle struct {
	brand     string
	line      string
	modelYear string
	imagePath string
	price     float64
}

// NewVehicle builds an immutable vehicle record.
// The model year is kept as text; it is only parsed when a query needs it.
func NewVehicle(brand, line, modelYear string, price float64, imagePath string) Vehicle {
	return Vehicle{
		brand:     brand,
		line:      line,
		modelYear: modelYear,
		price:     price,
		imagePath: imagePath,
	}
}

// Brand returns the manufacturer name.
func (v Vehicle) Brand() string { return v.brand }

// Line returns the model line within the brand.
func (v Vehicle) Line() string { return v.line }

// ModelYear returns the model year exactly as it was loaded.
func (v Vehicle) ModelYear() string { return v.modelYear }

// Price returns the listed price in currency units.
func (v Vehicle) Price() float64 { return v.price }

// ImagePath returns the path of the vehicle picture.
func (v Vehicle) ImagePath() string { return v.imagePath }

// ParseModelYear parses the model year as a base-10 integer.
// No whitespace trimming is applied.
func (v Vehicle) ParseModelYear() (int, error) {
	year, err := strconv.Atoi(v.modelYear)
	if err != nil {
		return 0, fmt.Errorf("model year %q of %s %s: %w", v.modelYear, v.brand, v.line, err)
	}
	return year, nil
}

// String implements fmt.Stringer.
func (v Vehicle) String() string {
	return fmt.Sprintf("%s %s %s", v.brand, v.line, v.modelYear)
}

// vehicleJSON is the wire shape used by MarshalJSON.
type vehicleJSON struct {
	Brand     string  `json:"brand"`
	Line      string  `json:"line"`
	ModelYear string  `json:"model_year"`
	ImagePath string  `json:"image_path"`
	Price     float64 `json:"price"`
}

// MarshalJSON implements json.Marshaler for API responses.
func (v Vehicle) MarshalJSON() ([]byte, error) {
	return json.Marshal(vehicleJSON{
		Brand:     v.brand,
		Line:      v.line,
		ModelYear: v.modelYear,
		ImagePath: v.imagePath,
		Price:     v.price,
	})
}
