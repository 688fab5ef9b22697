package main

import (
	"fmt"
	"sync/atomic"
	"time"
)

const (
	progressUpdateInterval = 100 * time.Millisecond
	clearLineSequence      = "\r\033[K"
)

// ProgressPrinter displays a progress message with elapsed time while the
// monitor works towards its first available state.
//
// Usage:
//
//	p := NewProgressPrinter(...)
//	p.Start()
//	defer p.Stop()
//
// The caller must call Stop to terminate the internal goroutine. A
// ProgressPrinter is single-use: Start may be called at most once and the
// instance cannot be restarted after Stop.
type ProgressPrinter struct {
	prefix    string
	phase     atomic.Value // stores string - current phase name
	startTime time.Time
	ticker    atomic.Pointer[time.Ticker]
	stopChan  chan struct{}
	done      chan struct{} // closed when goroutine exits
	started   atomic.Bool   // ensures Start is called at most once
}

// NewProgressPrinter creates a progress printer showing elapsed time
func NewProgressPrinter(prefix, phase string) *ProgressPrinter {
	p := &ProgressPrinter{prefix: prefix}
	p.phase.Store(phase)
	return p
}

// Start begins displaying progress updates in a background goroutine.
// Panics if called more than once on the same ProgressPrinter instance.
func (p *ProgressPrinter) Start() {
	if !p.started.CompareAndSwap(false, true) {
		panic("ProgressPrinter.Start called more than once")
	}

	p.done = make(chan struct{})
	p.stopChan = make(chan struct{})
	p.startTime = time.Now()
	ticker := time.NewTicker(progressUpdateInterval)
	p.ticker.Store(ticker)

	fmt.Printf("\r%s (%s...)   ", p.prefix, p.phase.Load().(string))

	go func() {
		defer close(p.done)
		for {
			select {
			case <-p.stopChan:
				return
			case <-ticker.C:
				elapsed := int(time.Since(p.startTime).Seconds())
				fmt.Printf("\r%s (%s %ds)   ", p.prefix, p.phase.Load().(string), elapsed)
			}
		}
	}()
}

// SetPhase updates the phase name. Safe to call from any goroutine.
func (p *ProgressPrinter) SetPhase(phase string) {
	p.phase.Store(phase)
}

// Stop stops the progress display and clears the line. Safe to call
// multiple times and from multiple goroutines; only the first call stops
// the ticker and waits for the goroutine to exit.
func (p *ProgressPrinter) Stop() {
	ticker := p.ticker.Swap(nil)
	if ticker == nil {
		return // Already stopped
	}

	ticker.Stop()
	close(p.stopChan)
	<-p.done

	fmt.Print(clearLineSequence)
}
