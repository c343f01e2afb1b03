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
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lednet/LedWorker/pkg/service/mqtt"
)

func TestMultiWriterCopiesToAllWriters(t *testing.T) {
	var a, b bytes.Buffer
	w := NewMultiWriter(&a, &b)
	n, err := w.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "hello\n", a.String())
	assert.Equal(t, "hello\n", b.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, assert.AnError }

func TestMultiWriterKeepsWritingPastFailures(t *testing.T) {
	var a, b bytes.Buffer
	w := NewMultiWriter(&a, failingWriter{}, &b)
	n, err := w.Write([]byte("x\n"))
	assert.Error(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "x\n", a.String())
	assert.Equal(t, "x\n", b.String())
}

func TestRingWriterKeepsMostRecentLines(t *testing.T) {
	w := NewRingWriter(3)
	for i := 1; i <= 5; i++ {
		_, err := fmt.Fprintf(w, "line %d\n", i)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"line 3", "line 4", "line 5"}, w.Lines())

	// Lines returns a copy.
	lines := w.Lines()
	lines[0] = "changed"
	assert.Equal(t, []string{"line 3", "line 4", "line 5"}, w.Lines())
}

// fakeMQTT implements mqtt.Service for tests.
type fakeMQTT struct {
	mutex     sync.Mutex
	published []string
	topics    []string
}

func (s *fakeMQTT) Close() error { return nil }

func (s *fakeMQTT) Publish(ctx context.Context, msg interface{}, topic string, qos byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.published = append(s.published, msg.(logMsg).Message)
	s.topics = append(s.topics, topic)
	return nil
}

func (s *fakeMQTT) Subscribe(ctx context.Context, topic string, qos byte) (mqtt.Subscription, error) {
	return nil, nil
}

func (s *fakeMQTT) count() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.published)
}

func TestMQTTWriterForwardsLines(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := NewMQTTWriter(ctx)
	mqttService := &fakeMQTT{}

	// Lines written before the destination is known stay queued.
	_, err := w.Write([]byte("early"))
	require.NoError(t, err)

	w.SetDestination("lednet/w1/log", mqttService)
	_, err = w.Write([]byte("hello\n"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return mqttService.count() >= 2
	}, time.Second*10, time.Millisecond*10)
	mqttService.mutex.Lock()
	defer mqttService.mutex.Unlock()
	// Trailing newlines are stripped from the published lines.
	assert.Equal(t, []string{"early", "hello"}, mqttService.published)
	assert.Equal(t, "lednet/w1/log", mqttService.topics[0])
}

func TestMQTTWriterDropsOldestWhenFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := NewMQTTWriter(ctx)
	mqttService := &fakeMQTT{}

	// Overfill the queue before a destination is known.
	for i := 0; i < logQueueSize+5; i++ {
		_, err := w.Write([]byte(fmt.Sprintf("line %d", i)))
		require.NoError(t, err)
	}
	w.SetDestination("lednet/w1/log", mqttService)

	assert.Eventually(t, func() bool {
		return mqttService.count() >= logQueueSize
	}, time.Second*10, time.Millisecond*10)
	mqttService.mutex.Lock()
	defer mqttService.mutex.Unlock()
	assert.Equal(t, "line 5", mqttService.published[0])
}
