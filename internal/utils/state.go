package utils

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidState is returned when NormalizeUSState is given an unknown value.
var ErrInvalidState = errors.New("invalid US state or territory")

var nonAlphaNum = regexp.MustCompile(`[^A-Z0-9]+`)

// usStates maps canonical USPS codes to their full names. Service addresses
// are always domestic, so only states, DC and PR are accepted.
var usStates = map[string]string{
	"AL": "ALABAMA", "AK": "ALASKA", "AZ": "ARIZONA", "AR": "ARKANSAS",
	"CA": "CALIFORNIA", "CO": "COLORADO", "CT": "CONNECTICUT", "DE": "DELAWARE",
	"FL": "FLORIDA", "GA": "GEORGIA", "HI": "HAWAII", "ID": "IDAHO",
	"IL": "ILLINOIS", "IN": "INDIANA", "IA": "IOWA", "KS": "KANSAS",
	"KY": "KENTUCKY", "LA": "LOUISIANA", "ME": "MAINE", "MD": "MARYLAND",
	"MA": "MASSACHUSETTS", "MI": "MICHIGAN", "MN": "MINNESOTA", "MS": "MISSISSIPPI",
	"MO": "MISSOURI", "MT": "MONTANA", "NE": "NEBRASKA", "NV": "NEVADA",
	"NH": "NEWHAMPSHIRE", "NJ": "NEWJERSEY", "NM": "NEWMEXICO", "NY": "NEWYORK",
	"NC": "NORTHCAROLINA", "ND": "NORTHDAKOTA", "OH": "OHIO", "OK": "OKLAHOMA",
	"OR": "OREGON", "PA": "PENNSYLVANIA", "RI": "RHODEISLAND", "SC": "SOUTHCAROLINA",
	"SD": "SOUTHDAKOTA", "TN": "TENNESSEE", "TX": "TEXAS", "UT": "UTAH",
	"VT": "VERMONT", "VA": "VIRGINIA", "WA": "WASHINGTON", "WV": "WESTVIRGINIA",
	"WI": "WISCONSIN", "WY": "WYOMING", "DC": "DISTRICTOFCOLUMBIA", "PR": "PUERTORICO",
}

// common abbreviations seen on intake forms
var stateAliases = map[string]string{
	"TEX": "TX", "CALIF": "CA", "FLA": "FL", "OKLA": "OK", "ARK": "AR",
	"LOUIS": "LA", "NMEX": "NM", "WASH": "WA", "PENN": "PA",
}

var stateByName = func() map[string]string {
	m := make(map[string]string, len(usStates))
	for code, name := range usStates {
		m[name] = code
	}
	return m
}()

// NormalizeUSState returns the canonical two-letter USPS code for the given input.
// The function is case-insensitive and ignores punctuation and whitespace.
func NormalizeUSState(s string) (string, error) {
	cleaned := nonAlphaNum.ReplaceAllString(strings.ToUpper(s), "")
	if _, ok := usStates[cleaned]; ok {
		return cleaned, nil
	}
	if code, ok := stateByName[cleaned]; ok {
		return code, nil
	}
	if code, ok := stateAliases[cleaned]; ok {
		return code, nil
	}
	return "", ErrInvalidState
}
