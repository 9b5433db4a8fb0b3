package utils

import (
	"strconv"

	"github.com/nyaruka/phonenumbers"
)

// unknownCountryCode is returned when a number can't be parsed.
const unknownCountryCode = "0"

// GetCountryCode returns the country calling code of an E.164 phone number, e.g. "1" for "+14155551234". It is
// meant for logs and metric labels, where the full number must not be exposed.
func GetCountryCode(phoneNumber string) string {
	parsedNumber, err := phonenumbers.Parse(phoneNumber, "")
	if err != nil || parsedNumber.GetCountryCode() == 0 {
		return unknownCountryCode
	}

	return strconv.Itoa(int(parsedNumber.GetCountryCode()))
}
