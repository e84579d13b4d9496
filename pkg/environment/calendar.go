package environment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/itaplanner/planner-backend/pkg/date"
	"github.com/pkg/errors"
)

const clockLayout = "15:04"

// WindowConfig is a daily time window, start and end in HH:MM
type WindowConfig struct {
	Start    string `yaml:"start" validate:"required,datetime=15:04"`
	End      string `yaml:"end" validate:"required,datetime=15:04"`
	Weekdays []int  `yaml:"weekdays" validate:"required,min=1,dive,min=0,max=6"`
}

// CalendarConfig is the business calendar read from a YAML file
type CalendarConfig struct {
	Timezone string            `yaml:"timezone" env:"TIMEZONE" env-default:"Europe/Kyiv" validate:"required"`
	Country  string            `yaml:"country" env-default:"UA" validate:"omitempty,len=2"`
	WorkDays []WindowConfig    `yaml:"workdays" validate:"required,min=1,dive"`
	Lunches  []WindowConfig    `yaml:"lunches" validate:"dive"`
	Holidays map[string]string `yaml:"holidays" validate:"dive,keys,datetime=2006-01-02,endkeys,required"`
}

// DefaultCalendarConfig is Monday to Friday 09:00 to 18:00 with lunch from 13:00 to 14:00 and Ukrainian holidays
func DefaultCalendarConfig() CalendarConfig {
	return CalendarConfig{
		Timezone: "Europe/Kyiv",
		Country:  "UA",
		WorkDays: []WindowConfig{
			{Start: "09:00", End: "18:00", Weekdays: []int{1, 2, 3, 4}},
			{Start: "09:00", End: "18:00", Weekdays: []int{5}},
		},
		Lunches: []WindowConfig{
			{Start: "13:00", End: "14:00", Weekdays: []int{1, 2, 3, 4, 5}},
		},
	}
}

// LoadCalendarConfig reads and validates the calendar file, an empty path returns the default calendar
func LoadCalendarConfig(path string) (CalendarConfig, error) {
	if path == "" {
		return DefaultCalendarConfig(), nil
	}

	var cfg CalendarConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return CalendarConfig{}, errors.Wrap(date.ErrConfiguration, err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return CalendarConfig{}, err
	}

	return cfg, nil
}

// Validate checks the structure of the configuration
func (c *CalendarConfig) Validate() error {
	v := validator.New()
	err := v.Struct(c)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			return errors.Wrap(date.ErrConfiguration, validationErrors[0].Error())
		}
		return errors.Wrap(date.ErrConfiguration, err.Error())
	}

	return nil
}

func parseClock(value string) (time.Duration, error) {
	clock, err := time.Parse(clockLayout, value)
	if err != nil {
		return 0, errors.Wrapf(date.ErrConfiguration, "invalid time of day %q", value)
	}
	return time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute, nil
}

func parseWindow(window WindowConfig) (time.Duration, time.Duration, []time.Weekday, error) {
	start, err := parseClock(window.Start)
	if err != nil {
		return 0, 0, nil, err
	}
	end, err := parseClock(window.End)
	if err != nil {
		return 0, 0, nil, err
	}

	weekdays := make([]time.Weekday, 0, len(window.Weekdays))
	for _, day := range window.Weekdays {
		weekdays = append(weekdays, time.Weekday(day))
	}

	return start, end, weekdays, nil
}

// ToBusinessHours converts the configuration into validated business hours
func (c *CalendarConfig) ToBusinessHours() (*date.BusinessHours, error) {
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(date.ErrConfiguration, "unknown timezone %q", c.Timezone)
	}

	hours := &date.BusinessHours{
		Location: location,
		Holidays: date.HolidayRule{Country: c.Country, Days: c.Holidays},
	}

	for _, window := range c.WorkDays {
		start, end, weekdays, err := parseWindow(window)
		if err != nil {
			return nil, err
		}
		hours.WorkDays = append(hours.WorkDays, date.WorkDayRule{Start: start, End: end, Weekdays: weekdays})
	}

	for _, window := range c.Lunches {
		start, end, weekdays, err := parseWindow(window)
		if err != nil {
			return nil, err
		}
		hours.Lunches = append(hours.Lunches, date.LunchTimeRule{Start: start, End: end, Weekdays: weekdays})
	}

	if err := hours.Validate(); err != nil {
		return nil, err
	}

	return hours, nil
}
