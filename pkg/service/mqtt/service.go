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

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

const (
	// QosAtMostOnce represents "QoS 0: At most once delivery".
	QosAtMostOnce byte = 0
	// QosAtLeastOnce represents "QoS 1: At least once delivery".
	QosAtLeastOnce byte = 1
	// QosExactlyOnce represents "QoS 2: Exactly once delivery".
	QosExactlyOnce byte = 2
	// QosDefault is used where the caller has no specific requirement.
	QosDefault = QosAtMostOnce
)

const (
	publishTimeout    = time.Second * 5
	subscribeQueueLen = 32
)

type Config struct {
	Host     string
	Port     int
	UserName string
	Password string
	ClientID string
}

// Service contains the API exposed by the MQTT service.
type Service interface {
	// Close the service
	Close() error
	// Publish a JSON encoded message into a topic.
	Publish(ctx context.Context, msg interface{}, topic string, qos byte) error
	// Subscribe to a topic
	Subscribe(ctx context.Context, topic string, qos byte) (Subscription, error)
}

// Subscription for a single topic
type Subscription interface {
	// Unsubscribe.
	Close() error
	// NextMsg blocks until the next message has been received.
	NextMsg(ctx context.Context, result interface{}) error
}

// NewService instantiates a new MQTT service and connects it to the
// configured broker.
func NewService(config Config, log zerolog.Logger) (Service, error) {
	log = log.With().Str("component", "mqtt").Logger()
	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	opts := mqttapi.NewClientOptions().
		AddBroker("tcp://" + addr).
		SetClientID(config.ClientID)
	if config.UserName != "" {
		opts.SetUsername(config.UserName)
		opts.SetPassword(config.Password)
	}
	opts.SetKeepAlive(5 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOrderMatters(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(c mqttapi.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
		connectionLostTotal.Inc()
	})
	opts.SetOnConnectHandler(func(c mqttapi.Client) {
		log.Debug().Str("address", addr).Msg("MQTT connected")
	})

	client := mqttapi.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to mqtt at '%s': %w", addr, token.Error())
	}
	return &service{
		Config: config,
		log:    log,
		client: client,
	}, nil
}

type service struct {
	Config
	mutex  sync.Mutex
	log    zerolog.Logger
	client mqttapi.Client
}

// Close the service
func (s *service) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.client != nil {
		s.client.Disconnect(250)
		s.client = nil
	}
	return nil
}

// Publish a JSON encoded message into a topic.
func (s *service) Publish(ctx context.Context, msg interface{}, topic string, qos byte) error {
	encodedMsg, err := json.Marshal(msg)
	if err != nil {
		return maskAny(err)
	}
	token := s.client.Publish(topic, qos, false, encodedMsg)
	if !token.WaitTimeout(publishTimeout) {
		publishErrorsTotal.WithLabelValues(topic).Inc()
		return maskAny(fmt.Errorf("failed to deliver message to '%s' in time", topic))
	}
	if err := token.Error(); err != nil {
		publishErrorsTotal.WithLabelValues(topic).Inc()
		return maskAny(err)
	}
	publishedMessagesTotal.WithLabelValues(topic).Inc()
	return nil
}

// Subscribe to a topic
func (s *service) Subscribe(ctx context.Context, topic string, qos byte) (Subscription, error) {
	result := &subscription{
		client: s.client,
		topic:  topic,
		queue:  make(chan []byte, subscribeQueueLen),
		closed: make(chan struct{}),
	}
	if token := s.client.Subscribe(topic, qos, result.messageHandler); token.Wait() && token.Error() != nil {
		return nil, maskAny(fmt.Errorf("failed to subscribe to '%s': %w", topic, token.Error()))
	}
	return result, nil
}

type subscription struct {
	client    mqttapi.Client
	topic     string
	queue     chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

// messageHandler puts incoming payloads in the queue, dropping the
// oldest message when the queue is full.
func (s *subscription) messageHandler(client mqttapi.Client, msg mqttapi.Message) {
	receivedMessagesTotal.WithLabelValues(s.topic).Inc()
	for {
		select {
		case s.queue <- msg.Payload():
			return
		default:
			select {
			case <-s.queue:
				// Dropped oldest message, try again
			default:
				// Continue
			}
		}
	}
}

// Unsubscribe.
func (s *subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		token := s.client.Unsubscribe(s.topic)
		token.Wait()
		err = token.Error()
	})
	return maskAny(err)
}

// NextMsg blocks until the next message has been received.
func (s *subscription) NextMsg(ctx context.Context, result interface{}) error {
	select {
	case encodedMsg := <-s.queue:
		if err := json.Unmarshal(encodedMsg, result); err != nil {
			return maskAny(err)
		}
		return nil
	case <-s.closed:
		return maskAny(SubscriptionClosedError)
	case <-ctx.Done():
		return maskAny(ctx.Err())
	}
}
