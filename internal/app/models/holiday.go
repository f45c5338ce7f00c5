package models

// FederalHoliday is a day on which the ACH network does not settle.
type FederalHoliday struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Year        int    `json:"year"`
	IsRecurring bool   `json:"isRecurring"`
}

type HolidayRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	IsRecurring bool   `json:"isRecurring"`
}

type BusinessDayCheck struct {
	Date          string `json:"date"`
	IsBusinessDay bool   `json:"isBusinessDay"`
	IsHoliday     bool   `json:"isHoliday"`
	IsWeekend     bool   `json:"isWeekend"`
	HolidayName   string `json:"holidayName,omitempty"`
}

type NextBusinessDay struct {
	Date            string `json:"date"`
	NextBusinessDay string `json:"nextBusinessDay"`
}
