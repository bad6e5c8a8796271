// Package pipeline drives a single .FEC filing end to end: header, cover,
// then the stream of itemization records, each handed to a configured
// writer.
package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/NickCrews/feco3/cover"
	"github.com/NickCrews/feco3/header"
	"github.com/NickCrews/feco3/lineparse"
	"github.com/NickCrews/feco3/linereader"
	"github.com/NickCrews/feco3/record"
	"github.com/NickCrews/feco3/writer"
)

// State is the pipeline's monotonic lifecycle position.
type State int

const (
	Fresh State = iota
	HeaderReady
	ReaderAttached
	CoverReady
	Exhausted
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "Fresh"
	case HeaderReady:
		return "HeaderReady"
	case ReaderAttached:
		return "ReaderAttached"
	case CoverReady:
		return "CoverReady"
	case Exhausted:
		return "Exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Pipeline owns one filing's byte source and lazily-initialized
// sub-components: header, delimited reader, cover, then records.
type Pipeline struct {
	src    io.Reader
	closer io.Closer
	parser lineparse.Parser

	state State

	headerParsing header.Parsing
	reader        *linereader.Reader
	cov           cover.Cover
}

// New constructs a Pipeline over src, parsing records with the given
// policy (lineparse.LiteralParser{} or lineparse.CoercingParser{}).
func New(src io.Reader, parser lineparse.Parser) *Pipeline {
	closer, _ := src.(io.Closer)
	return &Pipeline{src: src, closer: closer, parser: parser, state: Fresh}
}

// Close releases the underlying byte source, if it is an io.Closer.
func (p *Pipeline) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

// GetHeader drives Fresh→HeaderReady and returns the cached header
// thereafter.
func (p *Pipeline) GetHeader() (header.Header, error) {
	if err := p.ensureHeader(); err != nil {
		return header.Header{}, err
	}
	return p.headerParsing.Header, nil
}

func (p *Pipeline) ensureHeader() error {
	if p.state >= HeaderReady {
		return nil
	}
	parsing, r, err := header.ParseBuffered(p.src)
	// r is the bufio.Reader header used internally; the delimited reader
	// reads the rest of the stream through it.
	p.src = r
	if err != nil {
		return err
	}
	p.headerParsing = parsing
	p.state = HeaderReady
	logrus.WithField("version", parsing.Header.FECVersion).Debug("pipeline: header ready")
	return nil
}

func (p *Pipeline) ensureReader() error {
	if p.state >= ReaderAttached {
		return nil
	}
	if err := p.ensureHeader(); err != nil {
		return err
	}
	p.reader = linereader.New(p.src, byte(p.headerParsing.Sep))
	p.state = ReaderAttached
	return nil
}

// GetCover drives through CoverReady and returns the cached cover
// thereafter.
func (p *Pipeline) GetCover() (cover.Cover, error) {
	if err := p.ensureCover(); err != nil {
		return cover.Cover{}, err
	}
	return p.cov, nil
}

func (p *Pipeline) ensureCover() error {
	if p.state >= CoverReady {
		return nil
	}
	if err := p.ensureReader(); err != nil {
		return err
	}
	raw, ok := p.reader.Next()
	if !ok {
		if err := p.reader.Err(); err != nil {
			return err
		}
		return errors.New("pipeline: stream ended before a cover line was found")
	}
	c, err := cover.Parse(p.headerParsing.Header.FECVersion, raw)
	if err != nil {
		return err
	}
	p.cov = c
	p.state = CoverReady
	logrus.WithFields(logrus.Fields{"form_type": c.FormType, "filer": c.FilerCommitteeID}).Debug("pipeline: cover ready")
	return nil
}

// NextLine drives through CoverReady once, then consumes and parses one
// raw line from the reader. It returns (nil, nil) at clean end of stream.
func (p *Pipeline) NextLine() (*record.Record, error) {
	if err := p.ensureCover(); err != nil {
		return nil, err
	}
	if p.state == Exhausted {
		return nil, nil
	}
	raw, ok := p.reader.Next()
	if !ok {
		p.state = Exhausted
		return nil, p.reader.Err()
	}
	rec, err := p.parser.Parse(p.headerParsing.Header.FECVersion, raw)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Process drives the pipeline to completion, writing every record to w and
// calling w.Finish() at the end.
func (p *Pipeline) Process(w writer.RecordWriter) error {
	if _, err := p.GetCover(); err != nil {
		return err
	}
	for {
		rec, err := p.NextLine()
		if err != nil {
			return err
		}
		if rec == nil {
			break
		}
		if err := w.WriteRecord(rec); err != nil {
			return err
		}
	}
	return w.Finish()
}

