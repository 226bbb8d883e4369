package lexicon

// usStates are the two-letter region codes tracked for coverage.
var usStates = [...]string{
	"AK", "AL", "AR", "AZ", "CA", "CO", "CT", "DE", "FL", "GA",
	"HI", "IA", "ID", "IL", "IN", "KS", "KY", "LA", "MA", "MD",
	"ME", "MI", "MN", "MO", "MS", "MT", "NC", "ND", "NE", "NH",
	"NJ", "NM", "NV", "NY", "OH", "OK", "OR", "PA", "RI", "SC",
	"SD", "TN", "TX", "UT", "VA", "VT", "WA", "WI", "WV", "WY",
}

// Regions returns the sorted list of tracked region codes.
func Regions() []string {
	out := make([]string, len(usStates))
	copy(out, usStates[:])
	return out
}
