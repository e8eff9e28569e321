package domain

import "strings"

// Centre is a residential centre transfers are made to or from.
type Centre struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Centres is the fixed list of known centres, in the order offered to operators.
var Centres = []Centre{
	{Name: "University of Worcester", Address: "Henwick Grove, Worcester WR2 6AJ"},
	{Name: "Taunton School", Address: "Staplegrove Road, Taunton TA2 6AD"},
	{Name: "St. Felix School", Address: "Halesworth Road, Reydon, Southwold IP18 6SD"},
	{Name: "Shebbear College", Address: "Shebbear, Beaworthy EX21 5HJ"},
	{Name: "UCL London", Address: "Gower Street, London WC1E 6BT"},
}

// CentreAddress returns the postal address of the named centre.
func CentreAddress(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Centres {
		if c.Name == name {
			return c.Address, true
		}
	}
	return "", false
}

// CentreNames returns the names of all known centres.
func CentreNames() []string {
	out := make([]string, len(Centres))
	for i, c := range Centres {
		out[i] = c.Name
	}
	return out
}

// Nationalities is the fixed country list for the nationality field.
var Nationalities = []string{
	"Afghanistan", "Albania", "Algeria", "United States", "Andorra", "Brazil",
	"China", "France", "Germany", "India", "Italy", "Japan", "Portugal",
	"South Korea", "Spain", "United Kingdom",
}

// CountryCodes are the calling codes offered for the GL mobile number.
// Only the leading "+NN" token is stored.
var CountryCodes = []string{
	"+44 (United Kingdom)", "+1 (United States)", "+33 (France)",
	"+49 (Germany)", "+39 (Italy)", "+34 (Spain)", "+351 (Portugal)",
	"+86 (China)", "+91 (India)", "+81 (Japan)",
}

// DialPrefix returns the "+NN" part of a CountryCodes entry.
func DialPrefix(code string) string {
	fields := strings.Fields(code)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// YesNo is the domain of the meet-and-greet and check-in fields.
var YesNo = []string{"Yes", "No"}

// TransferTypes and GroupTypes are the gate domains as plain strings.
var (
	TransferTypes = []string{string(Arrival), string(Departure)}
	GroupTypes    = []string{string(Group), string(Individual)}
)
