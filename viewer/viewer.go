// Package viewer builds embeddable links to the NCBI iCn3D structure
// viewer for PDB accessions.
package viewer

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

// DefaultBaseURL is the public iCn3D full-page viewer.
const DefaultBaseURL = "https://www.ncbi.nlm.nih.gov/Structure/icn3d/full.html"

var (
	// ErrInvalidStructureID is returned for strings that are not PDB accessions.
	ErrInvalidStructureID = errors.New("invalid structure id")

	// ErrInvalidBaseURL is returned when the viewer base URL cannot be used.
	ErrInvalidBaseURL = errors.New("invalid viewer base url")
)

var frameTemplate = template.Must(template.New("frame").Parse(
	`<iframe src="{{.URL}}" title="3D structure {{.StructureID}}" width="100%" height="480" frameborder="0" allowfullscreen></iframe>`))

// Frame is a ready-to-embed view of one structure.
type Frame struct {
	StructureID string
	URL         string
	HTML        template.HTML
}

// Viewer renders structure frames against a fixed base URL.
type Viewer struct {
	base *url.URL
}

// New creates a Viewer. An empty baseURL selects DefaultBaseURL.
func New(baseURL string) (*Viewer, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	return &Viewer{base: u}, nil
}

// Embed returns the viewer frame for structureID. The accession is
// normalized to upper case.
func (v *Viewer) Embed(structureID string) (Frame, error) {
	id, err := NormalizeStructureID(structureID)
	if err != nil {
		return Frame{}, err
	}

	u := *v.base
	q := u.Query()
	q.Set("pdbid", id)
	q.Set("ar", "1")
	q.Set("simple", "1")
	q.Set("showcommand", "0")
	u.RawQuery = encodeOrdered(q, "pdbid", "ar", "simple", "showcommand")

	frame := Frame{StructureID: id, URL: u.String()}
	var buf bytes.Buffer
	if err := frameTemplate.Execute(&buf, frame); err != nil {
		return Frame{}, err
	}
	frame.HTML = template.HTML(buf.String())
	return frame, nil
}

// NormalizeStructureID validates a four character PDB accession: a digit
// from 1 to 9 followed by three letters or digits.
func NormalizeStructureID(s string) (string, error) {
	id := strings.ToUpper(strings.TrimSpace(s))
	if len(id) != 4 || id[0] < '1' || id[0] > '9' {
		return "", fmt.Errorf("%w: %q", ErrInvalidStructureID, s)
	}
	for i := 1; i < 4; i++ {
		ch := id[i]
		if !(ch >= 'A' && ch <= 'Z') && !(ch >= '0' && ch <= '9') {
			return "", fmt.Errorf("%w: %q", ErrInvalidStructureID, s)
		}
	}
	return id, nil
}

// encodeOrdered encodes the listed keys first, in order, followed by any
// other keys the base URL carried. url.Values.Encode sorts alphabetically.
func encodeOrdered(q url.Values, first ...string) string {
	var b strings.Builder
	seen := make(map[string]bool, len(first))
	write := func(k string) {
		for _, v := range q[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	for _, k := range first {
		seen[k] = true
		write(k)
	}
	rest := url.Values{}
	for k, vs := range q {
		if !seen[k] {
			rest[k] = vs
		}
	}
	if encoded := rest.Encode(); encoded != "" {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(encoded)
	}
	return b.String()
}
