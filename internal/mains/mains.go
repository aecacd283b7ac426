// Package mains detects the local electrical mains frequency from the
// system timezone. The audio planner keeps its rumble filter cutoff at
// or above the hum fundamental so 50/60Hz interference does not slip
// under the highpass.
package mains

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// Frequency returns the local mains frequency in Hz (50.0 or 60.0).
// Returns 50Hz if detection fails or the timezone is ambiguous.
func Frequency() float64 {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return 50.0 // Default fallback
	}
	return FrequencyForTimezone(timezone)
}

// FrequencyForTimezone returns the mains frequency for an IANA
// timezone. Exported for testing with specific timezones.
func FrequencyForTimezone(timezone string) float64 {
	// UTC/GMT carry no country association; default to 50Hz
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return 50.0
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return 50.0
	}

	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return 50.0
	}

	return frequencyForCountry(country)
}

// frequencyForCountry returns the mains frequency for a country name.
// Returns 50Hz for unknown countries (more common globally).
func frequencyForCountry(country string) float64 {
	// Japan splits 50/60Hz by region; default to 50Hz since the Tokyo
	// region is the most populous
	if country == "Japan" {
		return 50.0
	}

	if hz60Countries[country] {
		return 60.0
	}
	return 50.0
}

// hz60Countries lists countries on 60Hz mains power. All others use
// 50Hz. Source: https://en.wikipedia.org/wiki/Mains_electricity_by_country
var hz60Countries = map[string]bool{
	// North America
	"United States": true,
	"Canada":        true,
	"Mexico":        true,

	// Central America
	"Belize":      true,
	"Costa Rica":  true,
	"El Salvador": true,
	"Guatemala":   true,
	"Honduras":    true,
	"Nicaragua":   true,
	"Panama":      true,

	// Caribbean
	"Bahamas":             true,
	"Barbados":            true,
	"Cayman Islands":      true,
	"Cuba":                true,
	"Dominican Republic":  true,
	"Haiti":               true,
	"Jamaica":             true,
	"Puerto Rico":         true,
	"Trinidad and Tobago": true,
	"U.S. Virgin Islands": true,

	// South America (partial; most of the continent is 50Hz)
	"Brazil":    true, // Brazil has both; 60Hz predominant
	"Colombia":  true,
	"Ecuador":   true,
	"Guyana":    true,
	"Peru":      true,
	"Suriname":  true,
	"Venezuela": true,

	// Asia (partial)
	"South Korea":  true,
	"Taiwan":       true,
	"Philippines":  true,
	"Saudi Arabia": true,

	// Pacific
	"Guam":             true,
	"American Samoa":   true,
	"Marshall Islands": true,
	"Micronesia":       true,
	"Palau":            true,
}
