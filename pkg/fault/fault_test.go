package fault

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

const faultBodyTemplate = `<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"
            s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">
  <s:Body>
    <s:Fault>
      <faultcode>s:Client</faultcode>
      <faultstring>UPnPError</faultstring>
      <detail>
        <UPnPError xmlns="urn:dslforum-org:control-1-0">
          <errorCode>%d</errorCode>
          <errorDescription>Invalid Action</errorDescription>
        </UPnPError>
      </detail>
    </s:Fault>
  </s:Body>
</s:Envelope>`

func faultBody(code int) []byte {
	return []byte(fmt.Sprintf(faultBodyTemplate, code))
}

func TestParseFaultKinds(t *testing.T) {
	tests := []struct {
		code     int
		kind     Kind
		sentinel error
	}{
		{401, KindInvalidAction, ErrInvalidAction},
		{402, KindInvalidArgument, ErrInvalidArgument},
		{501, KindActionFailed, ErrActionFailed},
		{600, KindInvalidArgumentValue, ErrInvalidArgumentValue},
		{603, KindOutOfMemory, ErrOutOfMemory},
		{606, KindSecurity, ErrSecurity},
		{713, KindArrayIndex, ErrArrayIndex},
		{714, KindLookup, ErrLookup},
		{801, KindStringTooShort, ErrStringTooShort},
		{802, KindStringTooLong, ErrStringTooLong},
		{803, KindInvalidCharacter, ErrInvalidCharacter},
		{820, KindInternal, ErrInternal},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("code_%d", tt.code), func(t *testing.T) {
			err := ParseFault(500, faultBody(tt.code))

			var devErr *Error
			if !errors.As(err, &devErr) {
				t.Fatalf("ParseFault returned %T, want *Error", err)
			}
			if devErr.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", devErr.Kind, tt.kind)
			}
			if devErr.Code != tt.code {
				t.Errorf("Code = %d, want %d", devErr.Code, tt.code)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(err, %v) = false", tt.sentinel)
			}
			if !errors.Is(err, ErrConnection) {
				t.Error("every device error should match ErrConnection")
			}
		})
	}
}

func TestParseFaultUnknownCode(t *testing.T) {
	err := ParseFault(500, faultBody(999))

	var devErr *Error
	if !errors.As(err, &devErr) {
		t.Fatalf("ParseFault returned %T, want *Error", err)
	}
	if devErr.Kind != KindUnknown {
		t.Errorf("Kind = %v, want KindUnknown", devErr.Kind)
	}
	if !errors.Is(err, ErrConnection) {
		t.Error("unknown codes should match the generic ErrConnection")
	}
	if errors.Is(err, ErrInvalidAction) {
		t.Error("unknown codes must not match a specific kind")
	}
}

func TestKindHierarchy(t *testing.T) {
	t.Run("ValueErrorsShareParent", func(t *testing.T) {
		for _, code := range []int{600, 801, 802, 803} {
			err := ParseFault(500, faultBody(code))
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("code %d should match ErrInvalidArgument", code)
			}
		}
	})

	t.Run("StringErrorsAreValueErrors", func(t *testing.T) {
		err := ParseFault(500, faultBody(801))
		if !errors.Is(err, ErrInvalidArgumentValue) {
			t.Error("code 801 should match ErrInvalidArgumentValue")
		}
	})

	t.Run("InternalFamily", func(t *testing.T) {
		for _, code := range []int{501, 603} {
			err := ParseFault(500, faultBody(code))
			if !errors.Is(err, ErrInternal) {
				t.Errorf("code %d should match ErrInternal", code)
			}
		}
		// but not vice versa
		err := ParseFault(500, faultBody(820))
		if errors.Is(err, ErrActionFailed) {
			t.Error("code 820 must not match the more specific ErrActionFailed")
		}
	})
}

func TestParseFaultHTMLBody(t *testing.T) {
	html := []byte("<HTML><HEAD><TITLE>Error</TITLE></HEAD><BODY>Access denied</BODY></HTML>")

	t.Run("Unauthorized", func(t *testing.T) {
		err := ParseFault(401, html)
		var authErr *AuthorizationError
		if !errors.As(err, &authErr) {
			t.Fatalf("ParseFault returned %T, want *AuthorizationError", err)
		}
		if !errors.Is(err, ErrAuthorization) {
			t.Error("should match ErrAuthorization")
		}
	})

	t.Run("OtherStatus", func(t *testing.T) {
		err := ParseFault(500, html)
		var connErr *ConnectionError
		if !errors.As(err, &connErr) {
			t.Fatalf("ParseFault returned %T, want *ConnectionError", err)
		}
		var devErr *Error
		if errors.As(err, &devErr) {
			t.Error("HTML rejection must be distinct from a mapped device error")
		}
	})

	t.Run("BodyTextRetained", func(t *testing.T) {
		err := ParseFault(500, html)
		var connErr *ConnectionError
		if !errors.As(err, &connErr) {
			t.Fatal("expected *ConnectionError")
		}
		if want := "Access denied"; !contains(connErr.Message, want) {
			t.Errorf("message %q should contain %q", connErr.Message, want)
		}
		if contains(connErr.Message, "<BODY>") {
			t.Error("tags should be stripped from the message")
		}
	})
}

func TestErrorDetailRetained(t *testing.T) {
	err := ParseFault(500, faultBody(401))
	var devErr *Error
	if !errors.As(err, &devErr) {
		t.Fatal("expected *Error")
	}
	if !contains(devErr.Detail, "errorDescription: Invalid Action") {
		t.Errorf("Detail should retain the device description, got %q", devErr.Detail)
	}
}

func TestCompatibilityPredicates(t *testing.T) {
	lookup := &Error{Kind: KindLookup, Code: 714}
	index := &Error{Kind: KindArrayIndex, Code: 713}

	if !lookup.IsLookupError() || lookup.IsIndexError() {
		t.Error("lookup predicates wrong")
	}
	if !index.IsIndexError() || index.IsLookupError() {
		t.Error("index predicates wrong")
	}
}

func TestStripTags(t *testing.T) {
	got := StripTags("<html><body>Some   <b>bold</b> text</body></html>")
	want := "Some bold text"
	if got != want {
		t.Errorf("StripTags = %q, want %q", got, want)
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
