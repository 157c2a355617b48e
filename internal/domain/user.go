package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrUserNotFound is returned when a chat id has no user row
var ErrUserNotFound = errors.New("user not found")

// PointsPerLevel is the score needed to advance one level
const PointsPerLevel = 50

// User represents a bot user
type User struct {
	ChatID          int64     `db:"chat_id"`
	Username        *string   `db:"username"`
	FirstName       *string   `db:"first_name"`
	Name            *string   `db:"name"`
	Age             *int      `db:"age"`
	City            *string   `db:"city"`
	Region          *string   `db:"region"`
	Gender          *string   `db:"gender"`
	Job             *string   `db:"job"`
	Goal            *string   `db:"goal"`
	Phone           *string   `db:"phone"`
	AIQuestionsUsed int       `db:"ai_questions_used"`
	Score           int       `db:"score"`
	RegisteredAt    time.Time `db:"registered_at"`
}

// Level derives the user level from the score
func (u User) Level() int {
	return Level(u.Score)
}

// Profile returns the editable profile part of the user
func (u User) Profile() Profile {
	return Profile{
		Name:   u.Name,
		Age:    u.Age,
		City:   u.City,
		Region: u.Region,
		Gender: u.Gender,
		Job:    u.Job,
		Goal:   u.Goal,
		Phone:  u.Phone,
	}
}

// Registered reports whether the registration wizard was completed at least once
func (u User) Registered() bool {
	return u.Name != nil
}

// Level maps a score to a level: floor(score/50)+1
func Level(score int) int {
	if score < 0 {
		return 1
	}
	return score/PointsPerLevel + 1
}

// ProfileField identifies one of the eight profile columns
type ProfileField string

const (
	FieldName   ProfileField = "name"
	FieldAge    ProfileField = "age"
	FieldCity   ProfileField = "city"
	FieldRegion ProfileField = "region"
	FieldGender ProfileField = "gender"
	FieldJob    ProfileField = "job"
	FieldGoal   ProfileField = "goal"
	FieldPhone  ProfileField = "phone"
)

// ProfileFields lists the profile fields in registration order
var ProfileFields = []ProfileField{
	FieldName,
	FieldAge,
	FieldCity,
	FieldRegion,
	FieldGender,
	FieldJob,
	FieldGoal,
	FieldPhone,
}

// Valid reports whether f is one of the known profile fields
func (f ProfileField) Valid() bool {
	for _, known := range ProfileFields {
		if f == known {
			return true
		}
	}
	return false
}

// Profile holds the registration answers
type Profile struct {
	Name   *string `json:"name,omitempty"`
	Age    *int    `json:"age,omitempty"`
	City   *string `json:"city,omitempty"`
	Region *string `json:"region,omitempty"`
	Gender *string `json:"gender,omitempty"`
	Job    *string `json:"job,omitempty"`
	Goal   *string `json:"goal,omitempty"`
	Phone  *string `json:"phone,omitempty"`
}

// Set stores a raw answer for the given field.
// Age becomes nil when it is not an integer, text fields keep the trimmed value.
func (p *Profile) Set(field ProfileField, raw string) {
	value := strings.TrimSpace(raw)
	switch field {
	case FieldAge:
		p.Age = ParseAge(value)
	case FieldName:
		p.Name = &value
	case FieldCity:
		p.City = &value
	case FieldRegion:
		p.Region = &value
	case FieldGender:
		p.Gender = &value
	case FieldJob:
		p.Job = &value
	case FieldGoal:
		p.Goal = &value
	case FieldPhone:
		p.Phone = &value
	}
}

// Value returns the stored value of a field as display text, empty when unset
func (p Profile) Value(field ProfileField) string {
	var s *string
	switch field {
	case FieldAge:
		if p.Age == nil {
			return ""
		}
		return strconv.Itoa(*p.Age)
	case FieldName:
		s = p.Name
	case FieldCity:
		s = p.City
	case FieldRegion:
		s = p.Region
	case FieldGender:
		s = p.Gender
	case FieldJob:
		s = p.Job
	case FieldGoal:
		s = p.Goal
	case FieldPhone:
		s = p.Phone
	}
	if s == nil {
		return ""
	}
	return *s
}

// ParseAge parses an age answer, nil when the input is not an integer
func ParseAge(raw string) *int {
	age, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &age
}

// FieldValue converts a raw single-field edit into the value stored in the column.
// Age parses to an int, text fields are trimmed; both become nil when empty or invalid.
func FieldValue(field ProfileField, raw string) any {
	value := strings.TrimSpace(raw)
	if field == FieldAge {
		if age := ParseAge(value); age != nil {
			return *age
		}
		return nil
	}
	if value == "" {
		return nil
	}
	return value
}

// Stats aggregates counters shown in the admin panel
type Stats struct {
	TotalUsers int
	ActiveVIP  int
}
