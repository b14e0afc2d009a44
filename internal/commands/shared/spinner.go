// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tombee/fluent/internal/cli/format"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

// Spinner shows an animated wait indicator with elapsed time on a
// terminal. On anything other than a terminal it stays silent.
type Spinner struct {
	mu        sync.Mutex
	w         io.Writer
	message   string
	startTime time.Time
	active    bool
	done      chan struct{}
	stopped   chan struct{}
	frameIdx  int
	isTTY     bool
}

// NewSpinner creates a spinner drawing on w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{w: w, isTTY: format.IsTTY(w)}
}

// Start begins the animation with message. Calling Start on a running
// spinner does nothing.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active || !s.isTTY {
		return
	}

	s.message = message
	s.startTime = time.Now()
	s.active = true
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	s.frameIdx = 0

	s.render()
	go s.animate(s.done, s.stopped)
}

// Stop ends the animation, clears the line and returns the time since
// Start.
func (s *Spinner) Stop() time.Duration {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return 0
	}
	elapsed := time.Since(s.startTime)
	s.active = false
	close(s.done)
	stopped := s.stopped
	s.mu.Unlock()

	<-stopped

	s.mu.Lock()
	fmt.Fprint(s.w, "\r\033[K")
	s.mu.Unlock()
	return elapsed
}

func (s *Spinner) animate(done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.active {
				s.frameIdx = (s.frameIdx + 1) % len(spinnerFrames)
				s.render()
			}
			s.mu.Unlock()
		}
	}
}

// render must be called with mu held.
func (s *Spinner) render() {
	fmt.Fprintf(s.w, "\r\033[K%s %s (%s)",
		spinnerFrames[s.frameIdx],
		s.message,
		formatElapsed(time.Since(s.startTime)))
}

// formatElapsed formats a duration for display (e.g., "12s", "1m 23s")
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if seconds == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
