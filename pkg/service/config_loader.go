//    Copyright 2025 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/lednet/LedWorker/model"
	"github.com/lednet/LedWorker/pkg/service/mqtt"
	"github.com/lednet/LedWorker/pkg/service/util"
)

const (
	// Interval between checks of the configuration file for changes
	configCheckInterval = time.Second * 5
)

// runLoadConfig keeps loading the worker configuration file and puts
// config changes in configChanged channel.
func (s *service) runLoadConfig(ctx context.Context,
	configChanged chan *model.LocalConfiguration) {

	// Prepare log
	log := s.Logger.With().Str("component", "config-loader").Logger()

	var lastConfHash string
	loadConfig := func(log zerolog.Logger) error {
		content, err := os.ReadFile(s.ConfigPath)
		if err != nil {
			log.Error().Err(err).Str("path", s.ConfigPath).Msg("Failed to read configuration file")
			return maskAny(err)
		}
		hash := fmt.Sprintf("%x", sha256.Sum256(content))
		if hash == lastConfHash {
			// Configuration did not change
			return nil
		}
		var conf model.LocalConfiguration
		if err := yaml.Unmarshal(content, &conf); err != nil {
			log.Error().Err(err).Str("path", s.ConfigPath).Msg("Failed to parse configuration file")
			return maskAny(err)
		}
		if err := conf.Validate(); err != nil {
			log.Error().Err(err).Str("path", s.ConfigPath).Msg("Configuration file is invalid")
			return maskAny(err)
		}
		log.Debug().
			Str("hash", hash).
			Int("devices", len(conf.Devices)).
			Int("fixtures", len(conf.Fixtures)).
			Msg("Received new configuration")
		lastConfHash = hash
		s.setConfiguration(conf)
		configurationChangesTotal.Inc()
		select {
		case configChanged <- &conf:
			// Continue
		case <-ctx.Done():
			// Context canceled
		}
		return nil
	}

	// Keep loading the configuration until the context is canceled
	for {
		if err := loadConfig(log); err != nil {
			configurationLoadErrorsTotal.Inc()
			s.Bridge.SetGreenLED(false)
			s.Bridge.SetRedLED(true)
		}
		select {
		case <-ctx.Done():
			// Context canceled
			return
		case <-s.reloadRequests:
			log.Debug().Msg("Configuration reload requested")
		case <-time.After(configCheckInterval):
			// Periodic check
		}
	}
}

// runWatchReloadTopic subscribes to the configuration reload topic and
// triggers a reload for every incoming message.
func (s *service) runWatchReloadTopic(ctx context.Context) error {
	log := s.Logger
	topic := s.configReloadTopic()
	once := func() error {
		subscription, err := s.MQTTService.Subscribe(ctx, topic, mqtt.QosAtLeastOnce)
		if err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("Failed to subscribe to reload topic")
			return maskAny(err)
		}
		defer subscription.Close()
		for {
			var msg struct{}
			if err := subscription.NextMsg(ctx, &msg); err != nil {
				if mqtt.IsSubscriptionClosed(err) || errors.Cause(err) == context.Canceled || ctx.Err() != nil {
					return nil
				}
				log.Debug().Err(err).Msg("NextMsg failed")
				return maskAny(err)
			}
			log.Debug().Str("topic", topic).Msg("Reload requested over MQTT")
			s.ReloadConfiguration()
		}
	}
	return util.UntilCanceled(ctx, log, "watchReloadTopic", once)
}
