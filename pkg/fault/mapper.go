package fault

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

var (
	tagPattern   = regexp.MustCompile(`<.*?>`)
	spacePattern = regexp.MustCompile(` +`)
)

// StripTags returns the given markup with all tags removed and whitespace
// collapsed, for use as a readable diagnostic message.
func StripTags(text string) string {
	tagFree := tagPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(tagFree, " "))
}

// isHTMLResponse reports whether the raw response body starts with an
// html tag. Devices answer with an HTML error page when a request is
// rejected before reaching the SOAP layer.
func isHTMLResponse(body []byte) bool {
	return bytes.HasPrefix(bytes.ToLower(bytes.TrimSpace(body)), []byte("<html"))
}

// ParseFault translates a non-success SOAP response into a typed error.
//
// HTML bodies indicate the device rejected the request before processing:
// these become an *AuthorizationError (status 401) or a *ConnectionError,
// both carrying the stripped body text. XML bodies carry a UPnP fault
// structure whose errorCode selects the *Error kind; the full detail
// subtree is retained as the diagnostic message. Unknown codes yield
// KindUnknown, which still matches ErrConnection.
func ParseFault(statusCode int, body []byte) error {
	if isHTMLResponse(body) {
		msg := "unable to perform operation. " + StripTags(string(body))
		if statusCode == http.StatusUnauthorized {
			return &AuthorizationError{Message: msg}
		}
		return &ConnectionError{Message: msg}
	}

	code, detail, err := parseFaultDetail(body)
	if err != nil {
		// Not well-formed XML: should not happen, but degrade to a
		// connection error instead of losing the response entirely.
		return &ConnectionError{Message: StripTags(string(body)), Err: err}
	}

	return &Error{
		Kind:   KindForCode(code),
		Code:   code,
		Detail: detail,
	}
}

// parseFaultDetail extracts the numeric error code and a readable
// "tag: text" listing from the <detail> subtree of a UPnP fault body.
func parseFaultDetail(body []byte) (int, string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	var (
		code     int
		parts    []string
		inDetail int
		current  string
	)

	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if inDetail > 0 {
				inDetail++
				current = t.Name.Local
			} else if t.Name.Local == "detail" {
				inDetail = 1
			}
		case xml.EndElement:
			if inDetail > 0 {
				inDetail--
			}
			current = ""
		case xml.CharData:
			if inDetail < 2 || current == "" {
				continue
			}
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			if current == "errorCode" {
				if parsed, err := strconv.Atoi(text); err == nil {
					code = parsed
				}
			}
			parts = append(parts, current+": "+text)
		}
	}

	return code, strings.Join(parts, "\n"), nil
}
