package utils

import "fmt"

// CalculateBMI derives body mass index from height in centimeters and
// weight in kilograms. Out-of-range inputs are rejected rather than
// producing a nonsense number.
func CalculateBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm < 50 || heightCm > 250 {
		return 0, fmt.Errorf("implausible height: %.1f cm", heightCm)
	}
	if weightKg < 10 || weightKg > 400 {
		return 0, fmt.Errorf("implausible weight: %.1f kg", weightKg)
	}
	m := heightCm / 100
	return weightKg / (m * m), nil
}

var bmiBands = []struct {
	upper float64
	label string
}{
	{18.5, "Underweight"},
	{25.0, "Normal weight"},
	{30.0, "Overweight"},
	{35.0, "Obesity class I"},
	{40.0, "Obesity class II"},
}

func BMICategory(bmi float64) string {
	for _, band := range bmiBands {
		if bmi < band.upper {
			return band.label
		}
	}
	return "Obesity class III"
}
