package greenpoint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// isinRegex checks the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// micRegex checks the ISO 10383 format: 4 uppercase alphanumeric characters.
var micRegex = regexp.MustCompile(`^[A-Z0-9]{4}$`)

// currencyRegex checks the ISO 4217 format: 3 uppercase letters.
var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// InstrumentType classifies a tradeable instrument.
type InstrumentType int

const (
	Stock InstrumentType = iota
	ETF
	Fund
)

func (t InstrumentType) String() string {
	switch t {
	case Stock:
		return "stock"
	case ETF:
		return "etf"
	case Fund:
		return "fund"
	default:
		return "unknown"
	}
}

// ParseInstrumentType parses a string into an InstrumentType.
func ParseInstrumentType(s string) (InstrumentType, error) {
	switch strings.ToLower(s) {
	case "stock":
		return Stock, nil
	case "etf":
		return ETF, nil
	case "fund":
		return Fund, nil
	default:
		return 0, fmt.Errorf("unknown instrument type: %q", s)
	}
}

// Instrument represents a tradeable asset identified by its ISIN.
//
// Identity is the ISIN alone: two Instruments with the same ISIN describe
// the same asset even if their descriptive attributes differ. Instruments
// are immutable once created; they are produced by an instrument resolver
// and read-only to the accounting engine.
type Instrument struct {
	isin     string // normalized upper-case, the identity key
	typ      InstrumentType
	name     string
	symbol   string // optional exchange ticker, upper-case
	mic      string // optional market identifier code (ISO 10383)
	currency string // ISO 4217 code

	// French tax wrapper eligibility and transaction-tax flag. Payload
	// carried for reporting, not part of the identity.
	pea    bool
	peaPME bool
	ttf    bool
}

// NewInstrument validates the identifiers and returns an immutable Instrument.
// The ISIN and symbol are normalized to upper case. Symbol and MIC may be
// empty (funds typically have neither).
func NewInstrument(isin string, typ InstrumentType, name, symbol, mic, currency string) (Instrument, error) {
	isin = strings.ToUpper(strings.TrimSpace(isin))
	if err := ValidateISIN(isin); err != nil {
		return Instrument{}, fmt.Errorf("invalid ISIN %q: %w", isin, err)
	}
	mic = strings.ToUpper(strings.TrimSpace(mic))
	if mic != "" {
		if err := ValidateMIC(mic); err != nil {
			return Instrument{}, fmt.Errorf("invalid MIC %q: %w", mic, err)
		}
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if err := ValidateCurrency(currency); err != nil {
		return Instrument{}, fmt.Errorf("invalid currency %q: %w", currency, err)
	}
	return Instrument{
		isin:     isin,
		typ:      typ,
		name:     name,
		symbol:   strings.ToUpper(strings.TrimSpace(symbol)),
		mic:      mic,
		currency: currency,
	}, nil
}

// WithFlags returns a copy of the instrument with the French tax wrapper
// eligibility flags set.
func (i Instrument) WithFlags(pea, peaPME, ttf bool) Instrument {
	i.pea, i.peaPME, i.ttf = pea, peaPME, ttf
	return i
}

// ISIN returns the instrument's identity key.
func (i Instrument) ISIN() string { return i.isin }

// Type returns the instrument classification.
func (i Instrument) Type() InstrumentType { return i.typ }

// Name returns the human readable instrument name.
func (i Instrument) Name() string { return i.name }

// Symbol returns the exchange ticker, or "" when the instrument has none.
func (i Instrument) Symbol() string { return i.symbol }

// MIC returns the market identifier code of the trading venue, or "".
func (i Instrument) MIC() string { return i.mic }

// Currency returns the ISO 4217 code the instrument trades in.
func (i Instrument) Currency() string { return i.currency }

// PEA reports eligibility for the French PEA wrapper.
func (i Instrument) PEA() bool { return i.pea }

// PEAPME reports eligibility for the French PEA-PME wrapper.
func (i Instrument) PEAPME() bool { return i.peaPME }

// TTF reports whether trades are subject to the French transaction tax.
func (i Instrument) TTF() bool { return i.ttf }

// Same reports whether both instruments identify the same asset, that is,
// whether their ISINs are equal.
func (i Instrument) Same(o Instrument) bool { return i.isin == o.isin }

func (i Instrument) String() string {
	if i.symbol != "" && i.mic != "" {
		return fmt.Sprintf("%s@%s: %s (%s)", i.symbol, i.mic, i.name, i.typ)
	}
	return fmt.Sprintf("%s: %s (%s)", i.isin, i.name, i.typ)
}

// ValidateISIN checks that a string is a validly formatted ISIN (ISO 6166),
// including the check digit. It returns nil if valid.
func ValidateISIN(isin string) error {
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}
	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}

	// Convert letters to numbers for the check digit calculation.
	var numeric strings.Builder
	for _, char := range isin[:11] {
		if char >= 'A' && char <= 'Z' {
			numeric.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			numeric.WriteRune(char)
		}
	}

	// Luhn variant over the expanded digit string.
	sum := 0
	double := true
	digits := numeric.String()
	for i := len(digits) - 1; i >= 0; i-- {
		digit, _ := strconv.Atoi(string(digits[i]))
		if double {
			digit *= 2
		}
		sum += (digit / 10) + (digit % 10)
		double = !double
	}

	expected := (10 - (sum % 10)) % 10
	actual, _ := strconv.Atoi(string(isin[11]))
	if expected != actual {
		return fmt.Errorf("invalid check digit: expected %d, got %d", expected, actual)
	}
	return nil
}

// ValidateMIC checks that a string conforms to the MIC (ISO 10383) format.
// It validates the format only, not official registration.
func ValidateMIC(mic string) error {
	if len(mic) != 4 {
		return fmt.Errorf("invalid length: must be 4 characters, got %d", len(mic))
	}
	if !micRegex.MatchString(mic) {
		return fmt.Errorf("invalid format: must be 4 uppercase alphanumeric characters")
	}
	return nil
}

// ValidateCurrency checks that a string conforms to the ISO 4217 format.
func ValidateCurrency(cur string) error {
	if !currencyRegex.MatchString(cur) {
		return fmt.Errorf("invalid format: must be 3 uppercase letters, got %q", cur)
	}
	return nil
}
