package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/NickCrews/feco3/connector"
	"github.com/NickCrews/feco3/lineparse"
	"github.com/NickCrews/feco3/opener"
	"github.com/NickCrews/feco3/writer"
)

// BatchDriver sequences N .FEC filings through one shared
// writer.MultiRecordWriter, so that forms sharing a line code across
// multiple filings land in the same output file. It adapts Carlodf-cetl's
// connector.SrcAwareStreamer idea (source name + byte offset) to the
// single-source connector.CountingReader, one per filing, for error
// context.
type BatchDriver struct {
	Parser  lineparse.Parser
	Factory writer.RecordWriterFactory
	// Workers bounds how many filings are processed concurrently. <= 1
	// means strictly sequential.
	Workers int
}

// Run opens each source in turn via opener.FromSpec, drives its Pipeline to
// completion against a shared writer.MultiRecordWriter, and calls Finish on
// the shared writer once every filing has been processed. It returns the
// first error encountered across all filings; the others are logged and
// the remaining filings still run to completion.
func (d *BatchDriver) Run(ctx context.Context, specs []string) error {
	shared := writer.NewMultiRecordWriter(d.Factory)

	workers := d.Workers
	if workers < 1 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, spec := range specs {
		spec := spec
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := d.runOne(ctx, spec, shared); err != nil {
				logrus.WithFields(logrus.Fields{"source": spec, "error": err}).Error("pipeline: filing failed")
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("pipeline: filing %q: %w", spec, err)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := shared.Finish(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (d *BatchDriver) runOne(ctx context.Context, spec string, w writer.RecordWriter) error {
	op, err := opener.FromSpec(spec)
	if err != nil {
		return err
	}
	rc, err := op.Open(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()

	counting := connector.NewCountingReader(op.Name(), rc)
	p := New(counting, d.Parser)
	defer p.Close()

	// Drive the filing to completion without calling w.Finish(): w is
	// shared across every filing in the batch, so Finish must happen
	// exactly once, after the last filing, in Run.
	if _, err := p.GetCover(); err != nil {
		return err
	}
	for {
		rec, err := p.NextLine()
		if err != nil {
			meta := counting.Current()
			return fmt.Errorf("at byte offset %d: %w", meta.ByteOffset, err)
		}
		if rec == nil {
			return nil
		}
		if err := w.WriteRecord(rec); err != nil {
			return err
		}
	}
}
