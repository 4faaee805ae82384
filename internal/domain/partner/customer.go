package partner

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/storefront/backend/internal/domain/shared"
)

// DefaultCountry is assigned when a customer record leaves the country blank
const DefaultCountry = "USA"

const (
	maxNameLength    = 100
	maxEmailLength   = 255
	maxPhoneLength   = 50
	maxAddressLength = 500
	maxFieldLength   = 100
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^[\d\s\-\(\)\+\.]+$`)
)

// Customer is a buyer. Email is the natural lookup key and is stored lower-cased.
type Customer struct {
	shared.BaseEntity
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
}

// CustomerRecord carries the writable customer fields
type CustomerRecord struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
}

// NewCustomer creates a new customer from rec
func NewCustomer(rec CustomerRecord) (*Customer, error) {
	rec = normalizeRecord(rec)
	if err := validateRecord(rec); err != nil {
		return nil, err
	}

	return &Customer{
		BaseEntity: shared.NewBaseEntity(),
		FirstName:  rec.FirstName,
		LastName:   rec.LastName,
		Email:      rec.Email,
		Phone:      rec.Phone,
		Address:    rec.Address,
		City:       rec.City,
		State:      rec.State,
		PostalCode: rec.PostalCode,
		Country:    rec.Country,
	}, nil
}

// NormalizeEmail returns the canonical form of an email used for lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FullName returns "First Last"
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// FullAddress joins the address parts that are present
func (c *Customer) FullAddress() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{c.Address, c.City, c.State, c.PostalCode, c.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func normalizeRecord(rec CustomerRecord) CustomerRecord {
	rec.FirstName = strings.TrimSpace(rec.FirstName)
	rec.LastName = strings.TrimSpace(rec.LastName)
	rec.Email = NormalizeEmail(rec.Email)
	rec.Phone = strings.TrimSpace(rec.Phone)
	rec.Address = strings.TrimSpace(rec.Address)
	rec.City = strings.TrimSpace(rec.City)
	rec.State = strings.TrimSpace(rec.State)
	rec.PostalCode = strings.TrimSpace(rec.PostalCode)
	rec.Country = strings.TrimSpace(rec.Country)
	if rec.Country == "" {
		rec.Country = DefaultCountry
	}
	return rec
}

func validateRecord(rec CustomerRecord) error {
	if rec.FirstName == "" {
		return validationError("First name cannot be empty")
	}
	if rec.LastName == "" {
		return validationError("Last name cannot be empty")
	}
	if utf8.RuneCountInString(rec.FirstName) > maxNameLength || utf8.RuneCountInString(rec.LastName) > maxNameLength {
		return validationError(fmt.Sprintf("Names cannot exceed %d characters", maxNameLength))
	}
	if err := validateEmail(rec.Email); err != nil {
		return err
	}
	if rec.Phone != "" {
		if err := validatePhone(rec.Phone); err != nil {
			return err
		}
	}
	if utf8.RuneCountInString(rec.Address) > maxAddressLength {
		return validationError(fmt.Sprintf("Address cannot exceed %d characters", maxAddressLength))
	}
	for _, f := range []string{rec.City, rec.State, rec.PostalCode, rec.Country} {
		if utf8.RuneCountInString(f) > maxFieldLength {
			return validationError(fmt.Sprintf("Address fields cannot exceed %d characters", maxFieldLength))
		}
	}
	return nil
}

func validatePhone(phone string) error {
	if len(phone) > maxPhoneLength {
		return validationError(fmt.Sprintf("Phone number cannot exceed %d characters", maxPhoneLength))
	}
	if !phoneRegex.MatchString(phone) {
		return validationError("Invalid phone number format")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return validationError("Email cannot be empty")
	}
	if len(email) > maxEmailLength {
		return validationError(fmt.Sprintf("Email cannot exceed %d characters", maxEmailLength))
	}
	if !emailRegex.MatchString(email) {
		return validationError("Invalid email format")
	}
	return nil
}

func validationError(msg string) error {
	return shared.NewDomainError(shared.CodeValidation, msg)
}
