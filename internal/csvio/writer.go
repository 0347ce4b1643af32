package csvio

import (
	"bufio"
	"io"
	"time"

	"github.com/yanun0323/errors"

	"main/internal/bus"
	"main/internal/model"
	"main/internal/obs"
)

// Writer drains serialized records from the output queue into the destination,
// header line first. It returns once the queue is closed and empty.
type Writer struct {
	dst     *bufio.Writer
	in      *bus.Queue[string]
	metrics *obs.Metrics
}

// NewWriter wraps the destination stream.
func NewWriter(dst io.Writer, in *bus.Queue[string], metrics *obs.Metrics) *Writer {
	return &Writer{
		dst:     bufio.NewWriterSize(dst, 64*1024),
		in:      in,
		metrics: metrics,
	}
}

// Run writes the header and every record in queue order, then flushes.
func (w *Writer) Run() error {
	start := time.Now()

	if err := w.writeLine(model.RecordHeader); err != nil {
		return errors.Wrap(err, "write header")
	}

	records := 0
	for {
		line, ok := w.in.Pop()
		if !ok {
			break
		}
		if err := w.writeLine(line); err != nil {
			return errors.Wrap(err, "write record").With("record", line)
		}
		records++
	}

	if err := w.dst.Flush(); err != nil {
		return errors.Wrap(err, "flush output")
	}

	w.metrics.ObserveWrite(time.Since(start))
	obs.Infof("output complete, %d records written", records)
	return nil
}

func (w *Writer) writeLine(line string) error {
	if _, err := w.dst.WriteString(line); err != nil {
		return err
	}
	return w.dst.WriteByte('\n')
}
