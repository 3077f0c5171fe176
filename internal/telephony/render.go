package telephony

import "encoding/xml"

// Render serializes a Response to the XML document the carrier expects,
// including the standard declaration.
func Render(r *Response) ([]byte, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(xml.Header)+len(body))
	out = append(out, xml.Header...)
	out = append(out, body...)
	return out, nil
}
