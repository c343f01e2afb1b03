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
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/lednet/LedWorker/pkg/service/mqtt"
)

// MQTTWriter is a destination of the zerolog logger that forwards log
// lines to an MQTT topic once a destination has been set.
// Lines written before that are queued.
type MQTTWriter interface {
	io.Writer
	// SetDestination starts forwarding queued and future log lines
	// to the given topic.
	SetDestination(topic string, mqttService mqtt.Service)
}

const (
	logQueueSize    = 512
	maxSendAttempts = 10
)

type mqttWriter struct {
	mutex       sync.Mutex
	lines       chan []byte
	topic       string
	mqttService mqtt.Service
}

// NewMQTTWriter creates a new MQTT output for logs.
// The MQTT sender is stopped when the given context is canceled.
func NewMQTTWriter(ctx context.Context) MQTTWriter {
	w := &mqttWriter{
		lines: make(chan []byte, logQueueSize),
	}
	go w.run(ctx)
	return w
}

// Write queues a single log line.
// The logger must never block on a slow broker, so when the queue is
// full the oldest line is dropped to make room.
func (w *mqttWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	// p is reused by the caller after Write returns
	line := make([]byte, len(p))
	copy(line, p)
	for attempt := 0; ; attempt++ {
		select {
		case w.lines <- line:
			return len(p), nil
		default:
		}
		if attempt >= maxSendAttempts {
			// Give up on this line
			return len(p), nil
		}
		select {
		case <-w.lines:
			// Dropped the oldest line
		default:
		}
	}
}

func (w *mqttWriter) SetDestination(topic string, mqttService mqtt.Service) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.topic = topic
	w.mqttService = mqttService
}

func (w *mqttWriter) destination() (string, mqtt.Service) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.topic, w.mqttService
}

// logMsg is the payload published for a single log line.
type logMsg struct {
	Message string `json:"message"`
}

func (w *mqttWriter) run(ctx context.Context) {
	for {
		topic, mqttService := w.destination()
		if mqttService == nil {
			// No destination yet
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		select {
		case line := <-w.lines:
			msg := logMsg{Message: strings.TrimRight(string(line), "\n")}
			mqttService.Publish(ctx, msg, topic, mqtt.QosDefault)
		case <-ctx.Done():
			return
		}
	}
}
