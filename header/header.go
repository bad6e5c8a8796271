// Package header decodes the two header dialects a .FEC file may open with
// and detects the field delimiter used by the rest of the file.
package header

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Delimiter is the field separator used by the rest of the filing, detected
// from the header.
type Delimiter byte

const (
	Comma Delimiter = ','
	Unit  Delimiter = 0x1C
)

func (d Delimiter) String() string {
	switch d {
	case Comma:
		return "comma"
	case Unit:
		return "unit-separator"
	default:
		return fmt.Sprintf("Delimiter(0x%02X)", byte(d))
	}
}

// detect returns Unit if line contains the ASCII unit separator, else Comma.
func detect(line []byte) Delimiter {
	if bytes.ContainsRune(line, rune(Unit)) {
		return Unit
	}
	return Comma
}

// Header is the filing's identifying metadata. SoftwareVersion, ReportID,
// and ReportNumber are optional: the legacy dialect always fills
// SoftwareVersion, the modern dialect may omit any of the three.
type Header struct {
	FECVersion      string
	SoftwareName    string
	SoftwareVersion *string
	ReportID        *string
	ReportNumber    *string
}

// Parsing is the result of a successful header parse: the header itself
// plus the delimiter the rest of the filing uses.
type Parsing struct {
	Header Header
	Sep    Delimiter
}

// ParseError reports a header that could not be decoded, along with the
// raw bytes consumed up to the point of failure.
type ParseError struct {
	Message   string
	BytesRead int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("header: %s (consumed %d bytes)", e.Message, e.BytesRead)
}

const legacyLineCeiling = 100

// Parse reads from src with minimal buffering (one byte per read while the
// header is decoded, so every byte after the header's last newline is left
// unread in src for the caller's delimited reader) and returns the decoded
// header and delimiter, or a *ParseError.
func Parse(src io.Reader) (Parsing, error) {
	p, _, err := ParseBuffered(src)
	return p, err
}

// headerSource limits each Read to a single byte while oneByte is set.
// bufio.Reader enforces a 16-byte minimum buffer, so without this it would
// read ahead past the header's last newline.
type headerSource struct {
	r       io.Reader
	oneByte bool
}

func (h *headerSource) Read(p []byte) (int, error) {
	if h.oneByte && len(p) > 1 {
		p = p[:1]
	}
	return h.r.Read(p)
}

// ParseBuffered behaves like Parse, but also returns the *bufio.Reader used
// internally. While the header is decoded, src is read one byte at a time,
// so the reader holds no bytes past the header's last newline when
// ParseBuffered returns; after that it reads from src in full-size chunks,
// and callers that go on to read the rest of the stream (package pipeline)
// may continue reading from it.
func ParseBuffered(src io.Reader) (Parsing, *bufio.Reader, error) {
	hs := &headerSource{r: src, oneByte: true}
	defer func() { hs.oneByte = false }()
	r := bufio.NewReaderSize(hs, 1)
	read := 0

	first, err := readLine(r, &read)
	for err == nil && len(first) == 0 {
		first, err = readLine(r, &read)
	}
	if err != nil {
		return Parsing{}, r, &ParseError{Message: "failed to read first line", BytesRead: read}
	}

	if bytes.Contains(first, []byte("/*")) {
		p, err := parseLegacy(r, &read)
		return p, r, err
	}
	p, err := parseModern(first, read)
	return p, r, err
}

// parseLegacy decodes the "/* Header ... key = value ... /* End Header"
// dialect. The delimiter is always comma for this dialect.
func parseLegacy(r *bufio.Reader, read *int) (Parsing, error) {
	logrus.Debug("header: parsing legacy header")
	var version, softwareName, softwareVersion string
	numLines := 0
	for {
		line, err := readLine(r, read)
		if err != nil {
			return Parsing{}, &ParseError{Message: "unexpected end of legacy header", BytesRead: *read}
		}
		if bytes.Contains(line, []byte("/*")) {
			break
		}
		numLines++
		if numLines > legacyLineCeiling {
			return Parsing{}, &ParseError{Message: "legacy header exceeds 100 lines", BytesRead: *read}
		}

		key, value, ok := splitHeaderLine(line)
		if !ok {
			continue
		}
		normKey := normHeaderKey(key)
		if strings.HasPrefix(normKey, "schedule_counts") {
			continue
		}
		switch normKey {
		case "fec_ver_#":
			version = normHeaderValue(value)
		case "soft_name":
			softwareName = normHeaderValue(value)
		case "soft_ver#":
			softwareVersion = normHeaderValue(value)
		}
	}

	if version == "" || softwareName == "" || softwareVersion == "" {
		return Parsing{}, &ParseError{Message: "legacy header missing a required key (fec_ver_#, soft_name, soft_ver#)", BytesRead: *read}
	}
	return Parsing{
		Header: Header{
			FECVersion:      version,
			SoftwareName:    softwareName,
			SoftwareVersion: &softwareVersion,
		},
		Sep: Comma,
	}, nil
}

// splitHeaderLine splits a "key = value" legacy header line on the first
// '=', returning ok=false if the line has no separator. Any further '='
// stays part of the value.
func splitHeaderLine(line []byte) (key, value []byte, ok bool) {
	parts := bytes.SplitN(line, []byte("="), 2)
	if len(parts) != 2 {
		return nil, nil, false
	}
	return parts[0], parts[1], true
}

func normHeaderKey(key []byte) string {
	return strings.ToLower(strings.TrimSpace(string(key)))
}

func normHeaderValue(value []byte) string {
	return strings.TrimSpace(string(value))
}

// parseModern decodes a single-line "HDR[FEC]version,softwareName,..."
// header, generalized from header.rs's non-legacy branch to also extract
// ReportID/ReportNumber when present rather than failing on a short line:
// only FECVersion and SoftwareName are required, the rest degrade to absent
// (mirroring the coercing policy of package lineparse).
func parseModern(line []byte, read int) (Parsing, error) {
	logrus.Debug("header: parsing modern header")
	sep := detect(line)
	parts := bytes.Split(line, []byte{byte(sep)})
	if len(parts) < 2 {
		return Parsing{}, &ParseError{Message: "modern header line has no fields", BytesRead: read}
	}

	offset := 1
	if string(parts[1]) == "FEC" {
		offset = 2
	}
	if len(parts) < offset+2 {
		return Parsing{}, &ParseError{Message: "modern header line missing version/software name", BytesRead: read}
	}

	h := Header{
		FECVersion:   string(parts[offset]),
		SoftwareName: string(parts[offset+1]),
	}
	if v := fieldAt(parts, offset+2); v != nil {
		h.SoftwareVersion = v
	}
	if v := fieldAt(parts, offset+3); v != nil {
		h.ReportID = v
	}
	if v := fieldAt(parts, offset+4); v != nil {
		h.ReportNumber = v
	}
	return Parsing{Header: h, Sep: sep}, nil
}

func fieldAt(parts [][]byte, i int) *string {
	if i >= len(parts) {
		return nil
	}
	s := string(parts[i])
	return &s
}

// readLine reads one newline-terminated line (newline stripped), tracking
// total bytes consumed including the newline itself.
func readLine(r *bufio.Reader, read *int) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	*read += len(line)
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return bytes.TrimRight(line, "\r\n"), nil
		}
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}
