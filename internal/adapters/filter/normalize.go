package filter

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"github.com/phishguard/phishguard/internal/core"
)

// urlPattern matches http(s) links in message bodies. Trailing punctuation is
// trimmed after the match.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// authResultPattern picks spf/dkim/dmarc verdicts out of an
// Authentication-Results header.
var authResultPattern = regexp.MustCompile(`(spf|dkim|dmarc)\s*=\s*([a-zA-Z]+)`)

// ParseMessage parses a raw RFC 822 message into the normalized form the
// scoring engine consumes. Malformed MIME structure degrades to treating the
// whole body as plain text rather than failing the message.
func ParseMessage(r io.Reader) (*core.NormalizedEmail, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	email := &core.NormalizedEmail{
		Headers: core.Headers(msg.Header),
	}

	email.Subject = decodeHeader(msg.Header.Get("Subject"))
	email.SenderName, email.SenderEmail = parseAddress(msg.Header.Get("From"))
	email.RecipientName, email.RecipientEmail = parseAddress(msg.Header.Get("To"))

	email.SPFResult, email.DKIMResult, email.DMARCResult = parseAuthResults(
		msg.Header.Get("Authentication-Results"))

	if err := extractBody(msg.Header.Get("Content-Type"),
		msg.Header.Get("Content-Transfer-Encoding"), msg.Body, email); err != nil {
		return nil, err
	}

	email.URLs = extractURLs(email.BodyText + "\n" + email.BodyHTML)

	return email, nil
}

// parseAddress splits an address header into display name and address,
// falling back to the raw value when it doesn't parse.
func parseAddress(raw string) (name, address string) {
	if raw == "" {
		return "", ""
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", strings.TrimSpace(raw)
	}
	return addr.Name, addr.Address
}

// decodeHeader decodes RFC 2047 encoded words, returning the raw value when
// decoding fails.
func decodeHeader(raw string) string {
	decoder := mime.WordDecoder{}
	decoded, err := decoder.DecodeHeader(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// parseAuthResults extracts the spf, dkim and dmarc verdicts from an
// Authentication-Results header. Missing checks come back as "none".
func parseAuthResults(header string) (spf, dkim, dmarc core.AuthVerdict) {
	spf, dkim, dmarc = core.AuthNone, core.AuthNone, core.AuthNone
	for _, match := range authResultPattern.FindAllStringSubmatch(strings.ToLower(header), -1) {
		verdict := core.ParseAuthVerdict(match[2])
		switch match[1] {
		case "spf":
			spf = verdict
		case "dkim":
			dkim = verdict
		case "dmarc":
			dmarc = verdict
		}
	}
	return spf, dkim, dmarc
}

// extractBody walks the MIME structure collecting text, HTML and attachment
// parts into the normalized email.
func extractBody(contentType, transferEncoding string, body io.Reader, email *core.NormalizedEmail) error {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// No or broken Content-Type: treat as plain text.
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return fmt.Errorf("multipart message without boundary")
		}
		return walkMultipart(multipart.NewReader(body, boundary), email)
	}

	content, err := io.ReadAll(decodeTransferEncoding(body, transferEncoding))
	if err != nil {
		return fmt.Errorf("failed to read message body: %w", err)
	}
	collectPart(mediaType, "", "", content, email)
	return nil
}

// walkMultipart reads every part of a multipart body, recursing into nested
// multiparts.
func walkMultipart(reader *multipart.Reader, email *core.NormalizedEmail) error {
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read message part: %w", err)
		}

		mediaType, params, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if err != nil {
			mediaType = "text/plain"
		}

		if strings.HasPrefix(mediaType, "multipart/") {
			if boundary := params["boundary"]; boundary != "" {
				if err := walkMultipart(multipart.NewReader(part, boundary), email); err != nil {
					return err
				}
			}
			continue
		}

		content, err := io.ReadAll(decodeTransferEncoding(part, part.Header.Get("Content-Transfer-Encoding")))
		if err != nil {
			return fmt.Errorf("failed to read message part: %w", err)
		}

		filename := part.FileName()
		disposition, _, _ := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
		collectPart(mediaType, disposition, filename, content, email)
	}
}

// collectPart routes one decoded MIME part into the right normalized field.
func collectPart(mediaType, disposition, filename string, content []byte, email *core.NormalizedEmail) {
	if filename != "" || disposition == "attachment" {
		email.Attachments = append(email.Attachments, core.Attachment{
			Filename:    filename,
			ContentType: mediaType,
			Size:        int64(len(content)),
		})
		return
	}

	switch mediaType {
	case "text/plain":
		if email.BodyText != "" {
			email.BodyText += "\n"
		}
		email.BodyText += string(content)
	case "text/html":
		if email.BodyHTML != "" {
			email.BodyHTML += "\n"
		}
		email.BodyHTML += string(content)
	}
}

// decodeTransferEncoding wraps the reader with the decoder matching the
// part's Content-Transfer-Encoding. Unknown encodings pass through as-is.
func decodeTransferEncoding(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// extractURLs finds the distinct links in the given text, in order of first
// appearance, with parsed domains.
func extractURLs(text string) []core.URL {
	var urls []core.URL
	seen := make(map[string]struct{})

	for _, raw := range urlPattern.FindAllString(text, -1) {
		raw = strings.TrimRight(raw, ".,;:!?")
		if _, ok := seen[raw]; ok {
			continue
		}
		seen[raw] = struct{}{}

		domain := ""
		if parsed, err := url.Parse(raw); err == nil {
			domain = strings.ToLower(parsed.Hostname())
		}
		urls = append(urls, core.URL{Raw: raw, Domain: domain})
	}
	return urls
}
