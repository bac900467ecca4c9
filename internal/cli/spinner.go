package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/treerings/pkg/observability"
)

var spinnerFrames = []string{"◜", "◠", "◝", "◞", "◡", "◟"}

const spinnerInterval = 90 * time.Millisecond

// Spinner draws a progress line on stderr until stopped or until its
// context ends. The message can change while it runs.
type Spinner struct {
	out    io.Writer
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	message string
	width   int // widest line drawn, for clearing

	start   sync.Once
	stop    sync.Once
	stopped chan struct{}
}

// newSpinnerWithContext creates a spinner that stops when ctx is done.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		out:     os.Stderr,
		ctx:     sctx,
		cancel:  cancel,
		message: message,
		stopped: make(chan struct{}),
	}
}

// Start begins drawing. Calling it more than once has no effect.
func (s *Spinner) Start() {
	s.start.Do(func() { go s.run() })
}

func (s *Spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := frame + " " + s.message
	s.width = max(s.width, len(line))
	fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width+2))
	}
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop stops drawing and clears the line. It is safe to call repeatedly,
// and before Start.
func (s *Spinner) Stop() {
	s.stop.Do(func() {
		// Mark as started so a later Start does not spawn a goroutine.
		started := true
		s.start.Do(func() { started = false })
		s.cancel()
		if started {
			<-s.stopped
		}
	})
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context has ended, either
// through Stop or through its parent.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

// frameProgress reports pipeline progress on a spinner as
// "<verb> <tag> (i/n)".
type frameProgress struct {
	observability.NoopPipelineHooks
	spinner *Spinner
	verb    string
	total   atomic.Int32
	done    atomic.Int32
}

// trackFrames returns a context whose pipeline events update s.
func trackFrames(ctx context.Context, s *Spinner, verb string) context.Context {
	return observability.WithHooks(ctx, observability.Hooks{
		Pipeline: &frameProgress{spinner: s, verb: verb},
	})
}

func (p *frameProgress) OnTimelineStart(_ context.Context, revisions int) {
	p.total.Store(int32(revisions))
	p.done.Store(0)
}

func (p *frameProgress) OnFrameStart(_ context.Context, tag string, _ int) {
	p.spinner.SetMessage(fmt.Sprintf("%s %s (%d/%d)", p.verb, tag, p.done.Load()+1, p.total.Load()))
}

func (p *frameProgress) OnFrameComplete(context.Context, string, int, time.Duration, error) {
	p.done.Add(1)
}
