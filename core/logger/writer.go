package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

const writerQueueDepth = 512

type writeJob struct {
	payload []byte
	// flush, when non-nil, asks the serve loop to sync sinks and ack.
	flush chan error
}

// asyncWriter decouples record emission from sink I/O. Payloads are queued
// and written by a single background goroutine, so handler callers only
// block when the queue is full.
type asyncWriter struct {
	jobs      chan writeJob
	drained   chan struct{}
	closeOnce sync.Once
	outs      []*bufio.Writer

	errMu    sync.Mutex
	firstErr error
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 32 * 1024
	}
	outs := make([]*bufio.Writer, 0, len(writers))
	for _, w := range writers {
		if w == nil {
			continue
		}
		outs = append(outs, bufio.NewWriterSize(w, bufSize))
	}
	aw := &asyncWriter{
		jobs:    make(chan writeJob, writerQueueDepth),
		drained: make(chan struct{}),
		outs:    outs,
	}
	go aw.serve()
	return aw
}

// serve is the only goroutine that touches outs.
func (w *asyncWriter) serve() {
	for job := range w.jobs {
		if job.flush != nil {
			job.flush <- w.syncOuts()
			continue
		}
		if err := w.emit(job.payload); err != nil {
			w.recordFailure(err)
		}
	}
	if err := w.syncOuts(); err != nil {
		w.recordFailure(err)
	}
	close(w.drained)
}

// Write enqueues a copy of p for the background goroutine. A full queue
// blocks rather than dropping records.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.firstFailure(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.jobs <- writeJob{payload: append([]byte(nil), p...)}
	return nil
}

// Flush blocks until everything queued before it has reached the sinks.
func (w *asyncWriter) Flush() error {
	if err := w.firstFailure(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	w.jobs <- writeJob{flush: ack}
	return <-ack
}

// Close drains the queue, syncs the sinks and reports the first write error.
func (w *asyncWriter) Close() error {
	w.closeOnce.Do(func() { close(w.jobs) })
	<-w.drained
	return w.firstFailure()
}

func (w *asyncWriter) emit(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	for _, out := range w.outs {
		if _, err := out.Write(p); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) syncOuts() error {
	var errs []error
	for _, out := range w.outs {
		if err := out.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) firstFailure() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.firstErr
}

func (w *asyncWriter) recordFailure(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.firstErr == nil {
		w.firstErr = err
	}
}
