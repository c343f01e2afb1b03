// Copyright 2025 Ewout Prangsma
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
//
// Author Ewout Prangsma
//

package logging

import (
	"strings"
	"sync"
)

// RingWriter is a destination of the zerolog logger that keeps the
// most recent log lines in memory, for display in the terminal console.
type RingWriter struct {
	mutex sync.RWMutex
	lines []string
	max   int
}

// NewRingWriter creates a ring writer keeping up to max lines.
func NewRingWriter(max int) *RingWriter {
	return &RingWriter{
		max: max,
	}
}

// Write stores a single log line, dropping the oldest line when full.
func (w *RingWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.lines = append(w.lines, line)
	if len(w.lines) > w.max {
		w.lines = w.lines[len(w.lines)-w.max:]
	}
	return len(p), nil
}

// Lines returns a copy of the stored log lines, oldest first.
func (w *RingWriter) Lines() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	result := make([]string, len(w.lines))
	copy(result, w.lines)
	return result
}
