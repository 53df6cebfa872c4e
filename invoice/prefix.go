package invoice

import (
	"fmt"
	"strconv"
	"strings"
)

// validNetworks lists the accepted network tags, mirroring the
// map[string]bool sentinel-validation pattern the rest of this pack uses
// for enum-like configuration values (e.g. a log-level or network-name
// allowlist).
var validNetworks = map[string]bool{
	"bc":   true,
	"tb":   true,
	"bcrt": true,
	"sb":   true,
}

// multiplier is one row of the pico-unit multiplier table (§6).
type multiplier struct {
	letter byte
	factor uint64
}

// multipliers is ordered from largest factor to smallest, so encoding can
// walk it once and take the first exact match -- that is both the
// shortest digit run and, on a tie, the higher-value multiplier.
var multipliers = []multiplier{
	{letter: 0, factor: 1_000_000_000_000}, // no letter: whole units
	{letter: 'm', factor: 1_000_000_000},
	{letter: 'u', factor: 1_000_000},
	{letter: 'n', factor: 1_000},
	{letter: 'p', factor: 1},
}

func multiplierFactor(letter byte) (uint64, bool) {
	for _, m := range multipliers {
		if m.letter == letter {
			return m.factor, true
		}
	}
	return 0, false
}

// parsedPrefix is the tokenized, not-yet-validated result of splitting an
// HRP into its grammatical pieces. Keeping tokenization and validation as
// separate passes (rather than failing mid-scan) keeps every error path in
// one place instead of scattered through the scan loop.
type parsedPrefix struct {
	network  string
	digits   string // empty if no amount present
	hasAmt   bool
	multiplier byte
}

// tokenizePrefix splits body into network, amount digits, and multiplier
// letter without validating any of them against the allowed sets. body is
// the HRP with its leading "ln" already removed; use ParsePrefix for the
// full HRP including "ln".
func tokenizePrefix(body string) (parsedPrefix, error) {
	i := 0
	for i < len(body) && body[i] >= 'a' && body[i] <= 'z' {
		i++
	}
	p := parsedPrefix{network: body[:i]}
	rest := body[i:]
	if rest == "" {
		return p, nil
	}

	j := 0
	for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
		j++
	}
	if j == 0 {
		return p, fmt.Errorf("%w: amount has no digits", ErrMalformedPrefix)
	}
	digits := rest[:j]
	after := rest[j:]
	if len(after) != 1 {
		return p, fmt.Errorf("%w: amount must end in exactly one multiplier letter", ErrMalformedPrefix)
	}
	letter := after[0]
	if letter < 'a' || letter > 'z' {
		return p, fmt.Errorf("%w: unexpected character %q", ErrMalformedPrefix, letter)
	}

	p.digits = digits
	p.hasAmt = true
	p.multiplier = letter
	return p, nil
}

// ParsePrefix parses a full HRP ("ln" + network + optional amount) into a
// network tag and an optional pico-unit amount. A nil amount means
// "unspecified".
func ParsePrefix(hrp string) (network string, amountPico *uint64, err error) {
	if !strings.HasPrefix(hrp, "ln") {
		return "", nil, fmt.Errorf("%w: missing \"ln\" prefix", ErrMalformedPrefix)
	}
	p, err := tokenizePrefix(hrp[2:])
	if err != nil {
		return "", nil, err
	}

	if !validNetworks[p.network] {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, p.network)
	}

	if !p.hasAmt {
		return p.network, nil, nil
	}

	factor, ok := multiplierFactor(p.multiplier)
	if !ok {
		return "", nil, fmt.Errorf("%w: unknown multiplier %q", ErrInvalidAmount, p.multiplier)
	}
	digits, err := strconv.ParseUint(p.digits, 10, 64)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	pico := digits * factor
	if pico == 0 {
		return "", nil, fmt.Errorf("%w: amount must be strictly positive", ErrInvalidAmount)
	}
	return p.network, &pico, nil
}

// EncodeAmount renders amountPico under the multiplier table, choosing the
// shortest exact <digits><multiplier> form. A nil amountPico renders as the
// empty string ("unspecified").
func EncodeAmount(amountPico *uint64) (string, error) {
	if amountPico == nil {
		return "", nil
	}
	pico := *amountPico
	if pico == 0 {
		return "", fmt.Errorf("%w: amount must be strictly positive", ErrInvalidAmount)
	}
	for _, m := range multipliers {
		if pico%m.factor == 0 {
			digits := strconv.FormatUint(pico/m.factor, 10)
			if m.letter == 0 {
				return digits, nil
			}
			return digits + string(m.letter), nil
		}
	}
	// factor 1 (p) always divides exactly, so this is unreachable.
	return "", fmt.Errorf("%w: no exact multiplier for %d", ErrInvalidAmount, pico)
}

// BuildHRP constructs the "ln"+network+amount human-readable prefix for
// encoding (§4.3 step 1).
func BuildHRP(network string, amountPico *uint64) (string, error) {
	if !validNetworks[network] {
		return "", fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}
	amt, err := EncodeAmount(amountPico)
	if err != nil {
		return "", err
	}
	return "ln" + network + amt, nil
}
