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

package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	terminate "github.com/pulcy/go-terminate"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/lednet/LedWorker/pkg/environment"
	"github.com/lednet/LedWorker/pkg/logging"
	"github.com/lednet/LedWorker/pkg/server"
	"github.com/lednet/LedWorker/pkg/service"
	"github.com/lednet/LedWorker/pkg/service/bridge"
	"github.com/lednet/LedWorker/pkg/service/mqtt"
	"github.com/lednet/LedWorker/pkg/ui"
)

const (
	projectName     = "LedNet LED Worker"
	defaultHTTPPort = 7120
	defaultSSHPort  = 7122
	logLinesKept    = 250
)

var (
	projectVersion = "dev"
	projectBuild   = "dev"
)

func main() {
	var levelFlag string
	var bridgeType string
	var configPath string
	var moduleID string
	var mqttHost string
	var mqttPort int
	var mqttUserName string
	var mqttPassword string
	var serverHost string
	var httpPort int
	var sshPort int

	pflag.StringVarP(&levelFlag, "level", "l", "debug", "Set log level")
	pflag.StringVarP(&bridgeType, "bridge", "b", "auto", "Type of bridge to use (rpi|periph|virtual|auto)")
	pflag.StringVarP(&configPath, "config", "c", "ledworker.yaml", "Path of the worker configuration file")
	pflag.StringVar(&moduleID, "module-id", "", "Module ID of this worker (derived from the host when empty)")
	pflag.StringVar(&mqttHost, "mqtt-host", "127.0.0.1", "Host the MQTT broker is listening on")
	pflag.IntVar(&mqttPort, "mqtt-port", 1883, "Port the MQTT broker is listening on")
	pflag.StringVar(&mqttUserName, "mqtt-username", "", "Username used to authenticate with the MQTT broker")
	pflag.StringVar(&mqttPassword, "mqtt-password", "", "Password used to authenticate with the MQTT broker")
	pflag.StringVar(&serverHost, "host", "0.0.0.0", "Host address the HTTP & SSH servers will listen on")
	pflag.IntVar(&httpPort, "http-port", defaultHTTPPort, "Port the HTTP server will listen on")
	pflag.IntVar(&sshPort, "ssh-port", defaultSSHPort, "Port the SSH server will listen on")
	pflag.Parse()

	// Prepare to shutdown in a controlled manor
	ctx, cancel := context.WithCancel(context.Background())

	logRing := logging.NewRingWriter(logLinesKept)
	logMQTT := logging.NewMQTTWriter(ctx)
	logger := zerolog.New(logging.NewMultiWriter(
		zerolog.ConsoleWriter{Out: os.Stderr},
		zerolog.ConsoleWriter{Out: logRing, NoColor: true},
		logMQTT,
	)).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(levelFlag)
	if err != nil {
		Exitf("Invalid log level '%s': %v\n", levelFlag, err)
	}
	logger = logger.Level(level)

	if bridgeType == "auto" {
		bridgeType = environment.AutoDetectBridgeType(logger)
	}
	var br bridge.API
	switch bridgeType {
	case "rpi":
		br, err = bridge.NewRaspberryPiBridge()
		if err != nil {
			Exitf("Failed to initialize Raspberry Pi bridge: %v\n", err)
		}
	case "periph":
		br, err = bridge.NewPeriphBridge()
		if err != nil {
			Exitf("Failed to initialize periph bridge: %v\n", err)
		}
	case "virtual":
		br, err = bridge.NewVirtualBridge(logger)
		if err != nil {
			Exitf("Failed to initialize virtual bridge: %v\n", err)
		}
	default:
		Exitf("Unknown bridge type '%s' (rpi|periph|virtual|auto)\n", bridgeType)
	}

	mqttClientID := moduleID
	if mqttClientID == "" {
		if hostName, err := os.Hostname(); err == nil {
			mqttClientID = hostName
		}
	}
	mqttService, err := mqtt.NewService(mqtt.Config{
		Host:     mqttHost,
		Port:     mqttPort,
		UserName: mqttUserName,
		Password: mqttPassword,
		ClientID: mqttClientID + "-ledworker",
	}, logger)
	if err != nil {
		Exitf("Failed to initialize MQTT service: %v\n", err)
	}

	svc, err := service.NewService(service.Config{
		ProgramVersion: projectVersion,
		ConfigPath:     configPath,
		ModuleID:       moduleID,
	}, service.Dependencies{
		Logger:      logger,
		Bridge:      br,
		MQTTService: mqttService,
	})
	if err != nil {
		Exitf("Failed to initialize Service: %v\n", err)
	}

	// Forward logs over MQTT now the module ID is known
	logMQTT.SetDestination(path.Join("lednet", strings.ToLower(svc.ModuleID()), "log"), mqttService)

	console := ui.New(logger, projectVersion, svc, logRing)
	httpServer, err := server.New(server.Config{
		Host:     serverHost,
		HTTPPort: httpPort,
		SSHPort:  sshPort,
	}, logger, console, svc)
	if err != nil {
		Exitf("Failed to initialize Server: %v\n", err)
	}

	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	fmt.Printf("Starting %s (version %s build %s)\n", projectName, projectVersion, projectBuild)
	g, ctx := errgroup.WithContext(ctx)
	// Take the servers down when the service stops
	g.Go(func() error { svc.Run(ctx); cancel(); return nil })
	g.Go(func() error { return httpServer.Run(ctx) })
	if err := g.Wait(); err != nil {
		Exitf("Service run failed: %#v", err)
	}
}

// Print the given error message and exit with code 1
func Exitf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
	os.Exit(1)
}
