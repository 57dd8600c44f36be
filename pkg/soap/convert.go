package soap

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// datetimeLayout is the ISO-8601-like pattern devices use for datetime
// state variables.
const datetimeLayout = "2006-01-02T15:04:05"

// ConvertValue converts a raw response value according to the
// state-variable data-type tag. Unknown tags pass the value through
// unchanged; conversion failures degrade to the raw text rather than
// erroring, because the wire format is not consistent across firmware
// versions.
func ConvertValue(dataType, value string) any {
	switch strings.ToLower(dataType) {
	case "i1", "i2", "i4", "ui1", "ui2", "ui4":
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		return value
	case "boolean":
		switch value {
		case "1":
			return true
		case "0":
			return false
		}
		return value
	case "datetime":
		if ts, err := time.Parse(datetimeLayout, value); err == nil {
			return ts
		}
		return value
	case "uuid":
		// strip the "uuid:" style prefix up to the final separator
		parts := strings.Split(value, ":")
		return parts[len(parts)-1]
	default:
		return value
	}
}

// xmlEscaper escapes the characters that must not appear verbatim in an
// element value.
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EncodeValue serializes an input-argument value for the envelope.
// Booleans and nil encode as the numeric strings the device expects;
// strings are XML-escaped; everything else uses its default formatting.
func EncodeValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "0"
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		return xmlEscaper.Replace(v)
	default:
		return fmt.Sprint(v)
	}
}
