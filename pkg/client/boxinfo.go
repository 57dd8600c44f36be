package client

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/fritzlink/fritzlink-go/pkg/fault"
)

// BoxInfo fetches the box-info endpoint and returns its fields, such
// as "Name", "Version" and "Lab". The result is fetched once and
// memoized; Rediscover clears it.
func (c *Client) BoxInfo() (map[string]string, error) {
	if c.boxInfo != nil {
		return c.boxInfo, nil
	}

	resp, err := c.httpClient.Get(c.endpoint + boxInfoPath)
	if err != nil {
		return nil, &fault.ConnectionError{Message: "fetching box info", Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &fault.ConnectionError{Message: "reading box info", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fault.ParseFault(resp.StatusCode, body)
	}

	info, err := parseBoxInfo(body)
	if err != nil {
		return nil, &fault.ConnectionError{Message: "malformed box info", Err: err}
	}
	c.boxInfo = info
	return info, nil
}

// parseBoxInfo maps the direct children of the document root to their
// text content, keyed by local element name.
func parseBoxInfo(body []byte) (map[string]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	info := make(map[string]string)

	depth := 0
	var name string
	var text strings.Builder
	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return info, nil
			}
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				name = t.Name.Local
				text.Reset()
			}
		case xml.EndElement:
			if depth == 2 {
				info[name] = strings.TrimSpace(text.String())
			}
			depth--
		case xml.CharData:
			if depth == 2 {
				text.Write(t)
			}
		}
	}
}
