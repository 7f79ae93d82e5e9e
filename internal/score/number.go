// internal/score/number.go

// Package score implements the polymorphic wire number used for hand scores
// and boss-blind chip targets. The client population is bimodal: vanilla
// clients report plain floats, modded clients report arbitrary-magnitude
// values as {m,e} pairs, hyper-exponential arrays, or raw notation strings.
// All four shapes interoperate on a single score channel; shapes the server
// cannot interpret are preserved verbatim so comparisons stay monotone.
package score

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Kind discriminates the four wire shapes of a Number.
type Kind int

const (
	KindRegular Kind = iota // ordinary float64
	KindBig                 // m * 10^e
	KindOmega               // hyper-exponential tower
	KindNotation            // uninterpreted notation string
)

var (
	// ErrInvalidFormat is returned when a decoded value is not one of the
	// four admissible shapes.
	ErrInvalidFormat = errors.New("invalid score number format")
)

// Number is a value type; copies are independent. The zero value is
// Regular(0).
type Number struct {
	kind Kind

	num  float64   // KindRegular
	m, e float64   // KindBig
	arr  []float64 // KindOmega
	sign int       // KindOmega
	str  string    // KindNotation
}

// Regular wraps an ordinary float64.
func Regular(n float64) Number {
	return Number{kind: KindRegular, num: n}
}

// Big wraps m * 10^e.
func Big(m, e float64) Number {
	return Number{kind: KindBig, m: m, e: e}
}

// Omega wraps a hyper-exponential tower. array[0] is the significand
// exponent; later entries are tower levels.
func Omega(array []float64, sign int) Number {
	return Number{kind: KindOmega, arr: array, sign: sign}
}

// Notation wraps an uninterpreted notation string such as
// "eeeee1.234e56789" or "e12#34##5678".
func Notation(s string) Number {
	return Number{kind: KindNotation, str: s}
}

// Kind reports which wire shape this number carries.
func (n Number) Kind() Kind { return n.kind }

// Float returns the Regular payload. Only meaningful for KindRegular.
func (n Number) Float() float64 { return n.num }

// BigParts returns the mantissa and exponent of a KindBig value.
func (n Number) BigParts() (m, e float64) { return n.m, n.e }

// OmegaParts returns the array and sign of a KindOmega value.
func (n Number) OmegaParts() ([]float64, int) { return n.arr, n.sign }

// NotationString returns the raw string of a KindNotation value.
func (n Number) NotationString() string { return n.str }

// FromValue parses a decoded wire value (from msgpack or JSON) into a
// Number: numeric scalars become Regular, {m,e} maps become Big,
// {array,sign} maps become Omega, strings go through notation parsing.
func FromValue(v interface{}) (Number, error) {
	switch val := v.(type) {
	case nil:
		return Number{}, ErrInvalidFormat
	case string:
		return Parse(val)
	case float64:
		return Regular(val), nil
	case float32:
		return Regular(float64(val)), nil
	case int:
		return Regular(float64(val)), nil
	case int8:
		return Regular(float64(val)), nil
	case int16:
		return Regular(float64(val)), nil
	case int32:
		return Regular(float64(val)), nil
	case int64:
		return Regular(float64(val)), nil
	case uint:
		return Regular(float64(val)), nil
	case uint8:
		return Regular(float64(val)), nil
	case uint16:
		return Regular(float64(val)), nil
	case uint32:
		return Regular(float64(val)), nil
	case uint64:
		return Regular(float64(val)), nil
	case map[string]interface{}:
		return fromMap(val)
	default:
		return Number{}, ErrInvalidFormat
	}
}

func fromMap(obj map[string]interface{}) (Number, error) {
	if _, mok := obj["m"]; mok {
		if _, eok := obj["e"]; eok {
			return Big(asFloat(obj["m"]), asFloat(obj["e"])), nil
		}
	}
	if rawArr, aok := obj["array"]; aok {
		if rawSign, sok := obj["sign"]; sok {
			var arr []float64
			if items, ok := rawArr.([]interface{}); ok {
				arr = make([]float64, 0, len(items))
				for _, it := range items {
					arr = append(arr, asFloat(it))
				}
			}
			return Omega(arr, int(asFloat(rawSign))), nil
		}
	}
	return Number{}, ErrInvalidFormat
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	default:
		return 0
	}
}

// Parse interprets a notation string. Empty strings parse as Regular(0);
// "Infinity"/"inf" and "nan"/"NaN" map to the corresponding floats; commas
// are stripped; leading-'e' forms route to Omega or Notation depending on
// depth; plain scientific notation with an overflowing exponent becomes Big.
func Parse(notation string) (Number, error) {
	if notation == "" {
		return Regular(0), nil
	}
	switch notation {
	case "Infinity", "inf":
		return Regular(math.Inf(1)), nil
	case "nan", "NaN":
		return Regular(math.NaN()), nil
	}

	clean := strings.ReplaceAll(notation, ",", "")

	if strings.HasPrefix(clean, "e") {
		if strings.Contains(clean, "#") {
			// Hyper and ultra-extreme notations stay symbolic.
			return Notation(clean), nil
		}
		eCount := leadingECount(clean)
		if eCount > 1 {
			// "eeeee1.234e56789": too deep to normalize, keep symbolic.
			return Notation(clean), nil
		}
		return parseDoubleExponential(clean[1:])
	}

	if strings.Contains(clean, "e") {
		if val, err := strconv.ParseFloat(clean, 64); err == nil && !math.IsInf(val, 0) {
			return Regular(val), nil
		}
		// Exponent overflows a float64; split it manually.
		return parseScientific(clean)
	}

	val, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return Number{}, fmt.Errorf("parse score %q: %w", notation, err)
	}
	return Regular(val), nil
}

func leadingECount(s string) int {
	n := 0
	for n < len(s) && s[n] == 'e' {
		n++
	}
	return n
}

// parseScientific handles "1.234e56789" whose exponent exceeds float64
// range.
func parseScientific(notation string) (Number, error) {
	parts := strings.Split(notation, "e")
	if len(parts) != 2 {
		return Number{}, fmt.Errorf("parse score %q: %w", notation, ErrInvalidFormat)
	}
	m, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Number{}, fmt.Errorf("parse score mantissa %q: %w", parts[0], err)
	}
	e, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Number{}, fmt.Errorf("parse score exponent %q: %w", parts[1], err)
	}
	return Big(m, e), nil
}

// parseDoubleExponential handles the remainder of a single-leading-'e'
// form: "e1.234e56789" means 10^(1.234 * 10^56789) and is stored as a
// two-level Omega; "e123" is a one-level tower.
func parseDoubleExponential(rest string) (Number, error) {
	if strings.Contains(rest, "e") {
		parts := strings.Split(rest, "e")
		if len(parts) != 2 {
			return Notation("e" + rest), nil
		}
		m, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return Number{}, fmt.Errorf("parse score mantissa %q: %w", parts[0], err)
		}
		e, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return Number{}, fmt.Errorf("parse score exponent %q: %w", parts[1], err)
		}
		return Omega([]float64{m * math.Pow(10, e), 2}, 1), nil
	}
	val, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return Number{}, fmt.Errorf("parse score %q: %w", rest, err)
	}
	return Omega([]float64{val, 1}, 1), nil
}

// Magnitude estimates log-scale size for ordering. The estimator only has
// to be monotone across tiers, not exact within them.
func (n Number) Magnitude() float64 {
	switch n.kind {
	case KindRegular:
		if math.IsInf(n.num, 0) {
			return math.Inf(1)
		}
		if math.IsNaN(n.num) {
			return math.Inf(-1)
		}
		return math.Max(0, math.Log10(math.Abs(n.num)))
	case KindBig:
		return n.e
	case KindOmega:
		if len(n.arr) == 0 {
			return 0
		}
		if len(n.arr) == 1 {
			return math.Max(0, math.Log10(n.arr[0]))
		}
		// Rough: each extra tower level dominates anything below it.
		return n.arr[0] + float64(len(n.arr)-1)*1000
	case KindNotation:
		if strings.Contains(n.str, "##") {
			return 1e6
		}
		if strings.Contains(n.str, "#") {
			return 1e3 + float64(strings.Count(n.str, "#"))*100
		}
		return float64(leadingECount(n.str)) * 1000
	}
	return 0
}

// IsNegative reports whether the value is below zero.
func (n Number) IsNegative() bool {
	switch n.kind {
	case KindRegular:
		return n.num < 0
	case KindBig:
		return n.m < 0
	case KindOmega:
		return n.sign < 0
	case KindNotation:
		return strings.HasPrefix(n.str, "-")
	}
	return false
}

// IsZero reports whether the value is effectively zero.
func (n Number) IsZero() bool {
	switch n.kind {
	case KindRegular:
		return n.num == 0
	case KindBig:
		return n.m == 0
	case KindOmega:
		return len(n.arr) == 0 || n.arr[0] == 0
	case KindNotation:
		return n.str == "0" || n.str == "0.0"
	}
	return true
}

// Float64 converts to a plain float when the value fits; the second return
// is false for Omega, Notation, and out-of-range Big values.
func (n Number) Float64() (float64, bool) {
	switch n.kind {
	case KindRegular:
		return n.num, true
	case KindBig:
		if math.Abs(n.e) < 308 {
			return n.m * math.Pow(10, n.e), true
		}
	}
	return 0, false
}

// Cmp orders two numbers: sign first, then estimated magnitude. Values in
// the same magnitude tier compare equal, which is all round adjudication
// needs.
func (n Number) Cmp(other Number) int {
	na, nb := n.IsNegative(), other.IsNegative()
	if na && !nb {
		return -1
	}
	if !na && nb {
		return 1
	}
	ma, mb := n.Magnitude(), other.Magnitude()
	switch {
	case ma < mb:
		return -1
	case ma > mb:
		return 1
	default:
		return 0
	}
}

// Less reports n < other under Cmp.
func (n Number) Less(other Number) bool { return n.Cmp(other) < 0 }

// Equal reports n and other fall in the same ordering class.
func (n Number) Equal(other Number) bool { return n.Cmp(other) == 0 }

// Add sums two numbers. Regular+Regular is an ordinary float sum. Big+Big
// aligns exponents when they are within 15 decades of each other and keeps
// the larger operand otherwise. Any mixed pairing keeps whichever operand
// has the larger estimated magnitude — non-associative, but in-game use
// only ever accumulates like-shaped scores into an accumulator.
func (n Number) Add(other Number) Number {
	switch {
	case n.kind == KindRegular && other.kind == KindRegular:
		return Regular(n.num + other.num)
	case n.kind == KindBig && other.kind == KindBig:
		if math.Abs(n.e-other.e) > 15 {
			if n.e > other.e {
				return n
			}
			return other
		}
		maxE := math.Max(n.e, other.e)
		am := n.m * math.Pow(10, n.e-maxE)
		bm := other.m * math.Pow(10, other.e-maxE)
		return Big(am+bm, maxE)
	default:
		if n.Magnitude() >= other.Magnitude() {
			return n
		}
		return other
	}
}

// String renders with three decimal places.
func (n Number) String() string {
	return n.Format(3)
}

// Format renders the number in game notation with the given number of
// decimal places on mantissas.
func (n Number) Format(places int) string {
	switch n.kind {
	case KindRegular:
		return formatRegular(n.num, places)
	case KindBig:
		return formatBig(n.m, n.e, places)
	case KindOmega:
		return formatOmega(n.arr, n.sign, places)
	case KindNotation:
		return n.str
	}
	return "0"
}

func formatRegular(v float64, places int) string {
	if math.Abs(v) < 1e6 {
		if v == math.Trunc(v) && !math.IsInf(v, 0) && !math.IsNaN(v) {
			return groupThousands(int64(v))
		}
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return formatScientific(v, places)
}

func formatBig(m, e float64, places int) string {
	if e < 1e6 {
		return strconv.FormatFloat(m, 'f', places, 64) + "e" + formatExponent(e)
	}
	// Exponent itself needs an exponent: "e1.234e56789".
	logE := math.Log10(e)
	mantissa := math.Pow(10, logE-math.Floor(logE))
	exp := math.Floor(logE)
	return "e" + strconv.FormatFloat(mantissa, 'f', places, 64) + "e" + formatExponent(exp)
}

func formatOmega(arr []float64, sign int, places int) string {
	if len(arr) == 0 {
		return "0"
	}
	signStr := ""
	if sign < 0 {
		signStr = "-"
	}
	if len(arr) <= 2 {
		eCount := 1
		if len(arr) == 2 {
			eCount = int(arr[1])
		}
		if eCount > 8 {
			eCount = 8
		}
		if eCount < 0 {
			eCount = 0
		}
		mantissa := math.Pow(10, arr[0]-math.Floor(arr[0]))
		exp := math.Floor(arr[0])
		return signStr + strings.Repeat("e", eCount) +
			strconv.FormatFloat(mantissa, 'f', places, 64) + "e" + formatExponent(exp)
	}
	// Deep towers collapse to hyper notation.
	rest := make([]string, 0, len(arr)-1)
	for _, lvl := range arr[1:] {
		rest = append(rest, strconv.FormatInt(int64(lvl), 10))
	}
	return signStr + "e" + strconv.FormatFloat(arr[0], 'f', places, 64) + "#" + strings.Join(rest, "#")
}

// formatScientific mimics the game's "1.000e8" rendering (no plus sign, no
// zero-padded exponent), which fmt's %e does not produce.
func formatScientific(v float64, places int) string {
	if math.IsInf(v, 1) {
		return "Infinity"
	}
	if math.IsInf(v, -1) {
		return "-Infinity"
	}
	if math.IsNaN(v) {
		return "nan"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	exp := math.Floor(math.Log10(v))
	mantissa := v / math.Pow(10, exp)
	return sign + strconv.FormatFloat(mantissa, 'f', places, 64) + "e" + strconv.FormatInt(int64(exp), 10)
}

func formatExponent(e float64) string {
	if math.Abs(e) >= 1e6 {
		return formatScientific(e, 3)
	}
	return strconv.FormatInt(int64(e), 10)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// wireValue returns the shape-preserving representation used by both the
// msgpack and JSON codecs.
func (n Number) wireValue() interface{} {
	switch n.kind {
	case KindRegular:
		return n.num
	case KindBig:
		return map[string]interface{}{"m": n.m, "e": n.e}
	case KindOmega:
		arr := n.arr
		if arr == nil {
			arr = []float64{}
		}
		return map[string]interface{}{"array": arr, "sign": n.sign}
	case KindNotation:
		return n.str
	}
	return 0.0
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (n Number) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch n.kind {
	case KindRegular:
		return enc.EncodeFloat64(n.num)
	case KindNotation:
		return enc.EncodeString(n.str)
	default:
		return enc.Encode(n.wireValue())
	}
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (n *Number) DecodeMsgpack(dec *msgpack.Decoder) error {
	raw, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return err
	}
	parsed, err := FromValue(normalizeKeys(raw))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// normalizeKeys converts msgpack's map[interface{}]interface{} maps (and
// leaves everything else alone) so FromValue sees map[string]interface{}.
func normalizeKeys(v interface{}) interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		return m
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out
	default:
		return v
	}
}

// MarshalJSON keeps the wire shape; non-finite floats become their notation
// strings since JSON has no literal for them.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.kind == KindRegular {
		if math.IsInf(n.num, 1) {
			return []byte(`"Infinity"`), nil
		}
		if math.IsInf(n.num, -1) {
			return []byte(`"-Infinity"`), nil
		}
		if math.IsNaN(n.num) {
			return []byte(`"nan"`), nil
		}
		return []byte(strconv.FormatFloat(n.num, 'g', -1, 64)), nil
	}
	return json.Marshal(n.wireValue())
}

// UnmarshalJSON accepts any of the four wire shapes.
func (n *Number) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromValue(raw)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
