package views

import (
	"sync"
	"time"
)

// LoaderInterval is how long each loader message stays on screen
const LoaderInterval = 2500 * time.Millisecond

// LoaderHint is shown under the rotating message
const LoaderHint = "This usually takes about 10-15 seconds"

// LoaderMessages returns the status lines cycled while an analysis runs
func LoaderMessages() []string {
	return []string{
		"Extracting candidate metadata...",
		"Scanning resume for technical signals...",
		"Cross-referencing claims with career patterns...",
		"Identifying potential skill exaggeration...",
		"Generating authenticity report...",
		"Finalizing AI score calculation...",
	}
}

// Rotator cycles through messages on a ticker. It must be stopped when the
// loading view is torn down.
type Rotator struct {
	messages []string
	onChange func(string)
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once

	mu    sync.Mutex
	index int
}

// NewRotator starts cycling messages every interval, calling onChange with
// each new message from the ticker goroutine. onChange may be nil.
func NewRotator(interval time.Duration, messages []string, onChange func(string)) *Rotator {
	r := &Rotator{
		messages: messages,
		onChange: onChange,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Rotator) loop() {
	for {
		select {
		case <-r.done:
			return
		case <-r.ticker.C:
			msg := r.advance()
			if r.onChange != nil && msg != "" {
				r.onChange(msg)
			}
		}
	}
}

func (r *Rotator) advance() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	r.index = (r.index + 1) % len(r.messages)
	return r.messages[r.index]
}

// Current returns the message on screen
func (r *Rotator) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[r.index]
}

// Stop releases the ticker. It is safe to call more than once.
func (r *Rotator) Stop() {
	r.stopOnce.Do(func() {
		r.ticker.Stop()
		close(r.done)
	})
}
