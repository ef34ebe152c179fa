package domain

import "time"

type MedicineForm string

const (
	MedicineFormTablet  MedicineForm = "Tablet"
	MedicineFormCapsule MedicineForm = "Capsule"
	MedicineFormSyrup   MedicineForm = "Syrup"
	MedicineFormDrop    MedicineForm = "Drop"
)

type MealTiming string

const (
	MealBeforeBreakfast MealTiming = "Before Breakfast"
	MealAfterBreakfast  MealTiming = "After Breakfast"
	MealBeforeLunch     MealTiming = "Before Lunch"
	MealAfterDinner     MealTiming = "After Dinner"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"
)

// Medicine is a medication an account takes, with the times of day it is due.
type Medicine struct {
	ID        int64
	UserID    string
	Name      string
	Dosage    string
	Duration  string
	Form      MedicineForm
	Meal      MealTiming
	Frequency Frequency
	CreatedAt time.Time
	UpdatedAt time.Time
	Times     []ReminderTime
}

// ReminderTime is a clock label ("8:00 AM") attached to a medicine.
type ReminderTime struct {
	ID         int64
	MedicineID int64
	Label      string
	Position   int
}
