package senate

import "mime"

// IsXMLContentType reports whether a Content-Type header names an XML media type.
// Unpublished votes are served as an HTML error page with a 200 status.
func IsXMLContentType(header string) bool {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return mediaType == "application/xml" || mediaType == "text/xml"
}
