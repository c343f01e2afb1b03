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
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/lednet/LedWorker/pkg/environment"
	"github.com/lednet/LedWorker/pkg/service/mqtt"
	"github.com/lednet/LedWorker/pkg/service/util"
)

// runWatchRebootTopic subscribes to the reboot topic and restarts the
// machine when a message comes in.
func (s *service) runWatchRebootTopic(ctx context.Context) error {
	log := s.Logger
	topic := s.rebootTopic()
	once := func() error {
		subscription, err := s.MQTTService.Subscribe(ctx, topic, mqtt.QosAtLeastOnce)
		if err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("Failed to subscribe to reboot topic")
			return maskAny(err)
		}
		defer subscription.Close()
		var msg struct{}
		if err := subscription.NextMsg(ctx, &msg); err != nil {
			if mqtt.IsSubscriptionClosed(err) || errors.Cause(err) == context.Canceled || ctx.Err() != nil {
				return nil
			}
			log.Debug().Err(err).Msg("NextMsg failed")
			return maskAny(err)
		}
		log.Warn().Str("topic", topic).Msg("Reboot requested over MQTT")
		if err := environment.Reboot(log); err != nil {
			log.Error().Err(err).Msg("Reboot failed")
		}
		return nil
	}
	return util.UntilCanceled(ctx, log, "watchRebootTopic", once)
}

// rebootTopic returns the topic on which a reboot of the machine can
// be requested.
func (s *service) rebootTopic() string {
	return path.Join("lednet", strings.ToLower(s.moduleID), "power", "reboot")
}
