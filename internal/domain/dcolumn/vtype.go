package dcolumn

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dcolumn/internal/core/apperror"
)

// Codec converts between the three shapes a dynamic value takes: raw user
// input, canonical stored text and the native Go value.
type Codec interface {
	Type() ValueType

	// MaxLength bounds the stored text for this value type.
	MaxLength() int

	// ParseInput validates raw user input and returns the canonical text
	// to store. Failure means the input is bad (BAD_INPUT).
	ParseInput(raw string) (string, error)

	// ParseStore interprets stored text as a native value. Failure means
	// corruption or a post-hoc type change (BAD_STORED_VALUE).
	ParseStore(stored string) (any, error)

	// EncodeStore converts a native value back to canonical stored text.
	EncodeStore(v any) (string, error)
}

// Stored-text length caps per value type.
const (
	maxLenBoolean   = 1
	maxLenChoice    = 12
	maxLenTemporal  = 20
	maxLenNumber    = 20
	maxLenFloat     = 305
	maxLenText      = 250
	maxLenTextBlock = 2000
)

var codecs = map[ValueType]Codec{
	TypeBoolean:   booleanCodec{},
	TypeChoice:    choiceCodec{},
	TypeDate:      dateCodec{},
	TypeDateTime:  dateTimeCodec{},
	TypeFloat:     floatCodec{},
	TypeNumber:    numberCodec{},
	TypeText:      textCodec{},
	TypeTextBlock: textBlockCodec{},
	TypeTime:      timeCodec{},
}

// CodecFor returns the codec for a value type.
func CodecFor(vt ValueType) (Codec, error) {
	c, ok := codecs[vt]
	if !ok {
		return nil, apperror.New(apperror.CodeUnknownValueType,
			fmt.Sprintf("unknown value type %d", int(vt)), 400).
			WithDetail("value_type", int(vt))
	}
	return c, nil
}

func badInput(value string) error {
	return apperror.New(apperror.CodeBadInput, fmt.Sprintf("value %q is not valid", value), 400).
		WithDetail("value", value)
}

func badStored(stored string) error {
	return apperror.New(apperror.CodeBadStoredValue,
		fmt.Sprintf("stored value %q cannot be interpreted", stored), 500).
		WithDetail("stored", stored)
}

// --- Boolean ---

type booleanCodec struct{}

func (booleanCodec) Type() ValueType { return TypeBoolean }
func (booleanCodec) MaxLength() int  { return maxLenBoolean }

func parseBoolToken(s string) (bool, bool) {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return false, false
	}
	if isDigits(t) {
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return false, false
		}
		return n != 0, true
	}
	switch t {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}

func (booleanCodec) ParseInput(raw string) (string, error) {
	b, ok := parseBoolToken(raw)
	if !ok {
		return "", badInput(raw)
	}
	if b {
		return "1", nil
	}
	return "0", nil
}

func (booleanCodec) ParseStore(stored string) (any, error) {
	b, ok := parseBoolToken(stored)
	if !ok {
		return nil, badStored(stored)
	}
	return b, nil
}

func (booleanCodec) EncodeStore(v any) (string, error) {
	b, ok := v.(bool)
	if !ok {
		return "", apperror.NewValidation(fmt.Sprintf("expected bool, got %T", v))
	}
	if b {
		return "1", nil
	}
	return "0", nil
}

// --- Choice ---

// choiceCodec handles the stored primary key only. Resolving the pk to a
// display value, and the store_relation variant that stores the display
// value directly, happen a layer up where the registry is available.
type choiceCodec struct{}

func (choiceCodec) Type() ValueType { return TypeChoice }
func (choiceCodec) MaxLength() int  { return maxLenChoice }

func (choiceCodec) ParseInput(raw string) (string, error) {
	t := strings.TrimSpace(raw)
	pk, err := strconv.ParseInt(t, 10, 64)
	if err != nil || pk < 0 {
		return "", badInput(raw)
	}
	return strconv.FormatInt(pk, 10), nil
}

func (choiceCodec) ParseStore(stored string) (any, error) {
	pk, err := strconv.ParseInt(strings.TrimSpace(stored), 10, 64)
	if err != nil || pk < 0 {
		return nil, badStored(stored)
	}
	return pk, nil
}

func (choiceCodec) EncodeStore(v any) (string, error) {
	pk, ok := toInt64(v)
	if !ok {
		return "", apperror.NewValidation(fmt.Sprintf("expected integer pk, got %T", v))
	}
	return strconv.FormatInt(pk, 10), nil
}

// --- Date, DateTime, Time ---

const (
	dateStoreLayout     = "2006-01-02"
	dateTimeStoreLayout = time.RFC3339
	timeStoreLayout     = "15:04:05"
)

// Accepted input layouts, most specific first. Natural language forms like
// "3 April, 2016" are accepted alongside ISO.
var dateInputLayouts = []string{
	dateStoreLayout,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2 January, 2006",
	"2 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"02/01/2006",
}

var dateTimeInputLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	dateStoreLayout,
	"2 January, 2006 15:04",
	"2 January, 2006",
}

var timeInputLayouts = []string{
	timeStoreLayout,
	"15:04",
	"3:04 PM",
	"3:04PM",
}

func parseAny(s string, layouts []string) (time.Time, bool) {
	t := strings.TrimSpace(s)
	for _, layout := range layouts {
		if v, err := time.Parse(layout, t); err == nil {
			return v, true
		}
	}
	return time.Time{}, false
}

type dateCodec struct{}

func (dateCodec) Type() ValueType { return TypeDate }
func (dateCodec) MaxLength() int  { return maxLenTemporal }

func (dateCodec) ParseInput(raw string) (string, error) {
	v, ok := parseAny(raw, dateInputLayouts)
	if !ok {
		return "", badInput(raw)
	}
	return v.Format(dateStoreLayout), nil
}

func (dateCodec) ParseStore(stored string) (any, error) {
	v, ok := parseAny(stored, dateInputLayouts)
	if !ok {
		return nil, badStored(stored)
	}
	return v, nil
}

func (dateCodec) EncodeStore(v any) (string, error) {
	t, ok := v.(time.Time)
	if !ok {
		return "", apperror.NewValidation(fmt.Sprintf("expected time.Time, got %T", v))
	}
	return t.Format(dateStoreLayout), nil
}

type dateTimeCodec struct{}

func (dateTimeCodec) Type() ValueType { return TypeDateTime }
func (dateTimeCodec) MaxLength() int  { return maxLenTemporal }

func (dateTimeCodec) ParseInput(raw string) (string, error) {
	v, ok := parseAny(raw, dateTimeInputLayouts)
	if !ok {
		return "", badInput(raw)
	}
	return v.Format(dateTimeStoreLayout), nil
}

func (dateTimeCodec) ParseStore(stored string) (any, error) {
	v, ok := parseAny(stored, dateTimeInputLayouts)
	if !ok {
		return nil, badStored(stored)
	}
	return v, nil
}

func (dateTimeCodec) EncodeStore(v any) (string, error) {
	t, ok := v.(time.Time)
	if !ok {
		return "", apperror.NewValidation(fmt.Sprintf("expected time.Time, got %T", v))
	}
	return t.Format(dateTimeStoreLayout), nil
}

type timeCodec struct{}

func (timeCodec) Type() ValueType { return TypeTime }
func (timeCodec) MaxLength() int  { return maxLenTemporal }

func (timeCodec) ParseInput(raw string) (string, error) {
	v, ok := parseAny(raw, timeInputLayouts)
	if !ok {
		return "", badInput(raw)
	}
	return v.Format(timeStoreLayout), nil
}

func (timeCodec) ParseStore(stored string) (any, error) {
	v, ok := parseAny(stored, timeInputLayouts)
	if !ok {
		return nil, badStored(stored)
	}
	return v, nil
}

func (timeCodec) EncodeStore(v any) (string, error) {
	t, ok := v.(time.Time)
	if !ok {
		return "", apperror.NewValidation(fmt.Sprintf("expected time.Time, got %T", v))
	}
	return t.Format(timeStoreLayout), nil
}

// --- Float ---

type floatCodec struct{}

func (floatCodec) Type() ValueType { return TypeFloat }
func (floatCodec) MaxLength() int  { return maxLenFloat }

func (floatCodec) ParseInput(raw string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return "", badInput(raw)
	}
	return d.String(), nil
}

func (floatCodec) ParseStore(stored string) (any, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(stored))
	if err != nil {
		return nil, badStored(stored)
	}
	return d, nil
}

func (floatCodec) EncodeStore(v any) (string, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.String(), nil
	case float64:
		return decimal.NewFromFloat(x).String(), nil
	case float32:
		return decimal.NewFromFloat32(x).String(), nil
	default:
		return "", apperror.NewValidation(fmt.Sprintf("expected decimal, got %T", v))
	}
}

// --- Number ---

type numberCodec struct{}

func (numberCodec) Type() ValueType { return TypeNumber }
func (numberCodec) MaxLength() int  { return maxLenNumber }

func (numberCodec) ParseInput(raw string) (string, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return "", badInput(raw)
	}
	return strconv.FormatInt(n, 10), nil
}

func (numberCodec) ParseStore(stored string) (any, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(stored), 10, 64)
	if err != nil {
		return nil, badStored(stored)
	}
	return n, nil
}

func (numberCodec) EncodeStore(v any) (string, error) {
	n, ok := toInt64(v)
	if !ok {
		return "", apperror.NewValidation(fmt.Sprintf("expected integer, got %T", v))
	}
	return strconv.FormatInt(n, 10), nil
}

// --- Text ---

type textCodec struct{}

func (textCodec) Type() ValueType { return TypeText }
func (textCodec) MaxLength() int  { return maxLenText }

func (textCodec) ParseInput(raw string) (string, error) { return raw, nil }
func (textCodec) ParseStore(stored string) (any, error) { return stored, nil }

func (textCodec) EncodeStore(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", apperror.NewValidation(fmt.Sprintf("expected string, got %T", v))
	}
	return s, nil
}

type textBlockCodec struct{}

func (textBlockCodec) Type() ValueType { return TypeTextBlock }
func (textBlockCodec) MaxLength() int  { return maxLenTextBlock }

func (textBlockCodec) ParseInput(raw string) (string, error) { return raw, nil }
func (textBlockCodec) ParseStore(stored string) (any, error) { return stored, nil }

func (textBlockCodec) EncodeStore(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", apperror.NewValidation(fmt.Sprintf("expected string, got %T", v))
	}
	return s, nil
}

// --- helpers ---

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case uint:
		return int64(x), true
	case uint64:
		return int64(x), true
	default:
		return 0, false
	}
}
