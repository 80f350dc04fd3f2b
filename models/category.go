package models

import "strings"

type VehicleCategory string

const (
	VehicleCar        VehicleCategory = "car"
	VehicleMotorcycle VehicleCategory = "motorcycle"
	VehicleBus        VehicleCategory = "bus"
	VehicleTruck      VehicleCategory = "truck"
)

// requiredLetter maps a vehicle category to the CNH letter needed to drive it.
var requiredLetter = map[VehicleCategory]rune{
	VehicleMotorcycle: 'A',
	VehicleCar:        'B',
	VehicleTruck:      'C',
	VehicleBus:        'D',
}

// impliedLetters lists what each heavier CNH letter also allows.
var impliedLetters = map[rune]string{
	'A': "A",
	'B': "B",
	'C': "BC",
	'D': "BCD",
	'E': "BCDE",
}

// LicenseCategory is an instructor's CNH category, e.g. "B", "AB" or "AD".
type LicenseCategory string

func (l LicenseCategory) Covers(vc VehicleCategory) bool {
	need, ok := requiredLetter[vc]
	if !ok {
		return false
	}
	for _, letter := range strings.ToUpper(string(l)) {
		if strings.ContainsRune(impliedLetters[letter], need) {
			return true
		}
	}
	return false
}
