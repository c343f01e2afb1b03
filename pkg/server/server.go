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

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lednet/LedWorker/model"
	"github.com/lednet/LedWorker/pkg/service/objects"
)

// Config for the HTTP server.
type Config struct {
	// Host interface to listen on
	Host string
	// Port to listen on for HTTP requests
	HTTPPort int
	// Port to listen on for SSH requests
	SSHPort int
}

// Server runs the HTTP & SSH servers for the service.
type Server struct {
	Config
	log     zerolog.Logger
	ui      UI
	service Service
}

type UI interface {
	// You can wire any Bubble Tea model up to the middleware with a function that
	// handles the incoming ssh.Session. Here we just grab the terminal info and
	// pass it to the new model. You can also return tea.ProgramOptions (such as
	// tea.WithAltScreen) on a session by session basis.
	Handler(s ssh.Session) (tea.Model, []tea.ProgramOption)
}

// Service contains the part of the worker service that is exposed
// over the REST API.
type Service interface {
	// ModuleID returns the identifier of this worker.
	ModuleID() string
	// Uptime returns the time since the service was started.
	Uptime() time.Duration
	// GetConfiguration returns the last loaded worker configuration.
	GetConfiguration() (model.LocalConfiguration, bool)
	// ReloadConfiguration triggers a reload of the worker configuration file.
	ReloadConfiguration()
	// SetFixtureRequest forwards the given request to the current worker.
	SetFixtureRequest(ctx context.Context, msg model.FixtureSetRequest) error
	// GetFixtureActuals returns the last applied state of all configured fixtures.
	GetFixtureActuals() []model.FixtureActual
	// Get a list of configured fixture IDs
	GetConfiguredFixtureIDs() []string
	// Get a list of unconfigured fixture IDs
	GetUnconfiguredFixtureIDs() []string
	// Get a list of configured device IDs
	GetConfiguredDeviceIDs() []string
	// Get a list of unconfigured device IDs
	GetUnconfiguredDeviceIDs() []string
	// GetDeviceActuals returns the current output values of all
	// configured PWM devices.
	GetDeviceActuals() []model.DeviceActual
}

// New configures a new Server.
func New(cfg Config, log zerolog.Logger, ui UI, service Service) (*Server, error) {
	return &Server{
		Config:  cfg,
		log:     log,
		ui:      ui,
		service: service,
	}, nil
}

// Run the server until the given context is canceled.
func (s *Server) Run(ctx context.Context) error {
	// Prepare HTTP listener
	log := s.log
	httpAddr := net.JoinHostPort(s.Host, strconv.Itoa(s.HTTPPort))
	httpLis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Fatal().Err(err).Msgf("failed to listen on address %s", httpAddr)
	}

	// Prepare HTTP server
	httpRouter := echo.New()
	httpRouter.HideBanner = true
	httpRouter.GET("/healthz", s.handleHealth)
	httpRouter.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	httpRouter.GET("/debug/pprof/*", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	httpRouter.GET("/api/v1/worker", s.handleGetWorker)
	httpRouter.GET("/api/v1/config", s.handleGetConfig)
	httpRouter.POST("/api/v1/config/reload", s.handleReloadConfig)
	httpRouter.GET("/api/v1/devices", s.handleGetDevices)
	httpRouter.GET("/api/v1/fixtures", s.handleGetFixtures)
	httpRouter.GET("/api/v1/fixtures/:id", s.handleGetFixture)
	httpRouter.POST("/api/v1/fixtures/:id", s.handleSetFixture)
	httpSrv := http.Server{
		Handler: httpRouter,
	}

	// Prepare SSH server
	sshAddr := net.JoinHostPort(s.Host, strconv.Itoa(s.SSHPort))
	sshServer, err := wish.NewServer(
		// The address the server will listen to.
		wish.WithAddress(sshAddr),

		// The SSH server need its own keys, this will create a keypair in the
		// given path if it doesn't exist yet.
		// By default, it will create an ED25519 key.
		wish.WithHostKeyPath(".ssh/id_ed25519"),

		// Middlewares do something on a ssh.Session, and then call the next
		// middleware in the stack.
		wish.WithMiddleware(
			bubbletea.Middleware(s.ui.Handler),
			// The last item in the chain is the first to be called.
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)
	if err != nil {
		return fmt.Errorf("could not start SSH server: %w", err)
	}

	// Serve apis
	log.Debug().Str("address", httpAddr).Msg("Serving HTTP")
	go func() {
		if err := httpSrv.Serve(httpLis); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to serve HTTP server")
		}
		log.Debug().Str("address", httpAddr).Msg("Done Serving HTTP")
	}()
	// Serve UI
	log.Debug().Str("address", sshAddr).Msg("Serving SSH")
	go func() {
		if err := sshServer.ListenAndServe(); err != nil && err != ssh.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to serve SSH server")
		}
		log.Debug().Str("address", sshAddr).Msg("Done Serving SSH")
	}()

	// Wait until context closed
	<-ctx.Done()

	log.Info().Msg("Closing servers")
	httpSrv.Shutdown(context.Background())
	sshServer.Shutdown(context.Background())

	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK\n")
}

// handleGetWorker returns the presence info of this worker.
func (s *Server) handleGetWorker(c echo.Context) error {
	result := model.WorkerInfo{
		ID:                     s.service.ModuleID(),
		Uptime:                 int64(s.service.Uptime().Seconds()),
		ConfiguredDeviceIDs:    s.service.GetConfiguredDeviceIDs(),
		UnconfiguredDeviceIDs:  s.service.GetUnconfiguredDeviceIDs(),
		ConfiguredFixtureIDs:   s.service.GetConfiguredFixtureIDs(),
		UnconfiguredFixtureIDs: s.service.GetUnconfiguredFixtureIDs(),
	}
	return c.JSON(http.StatusOK, result)
}

// handleGetConfig returns the last loaded worker configuration.
func (s *Server) handleGetConfig(c echo.Context) error {
	conf, ok := s.service.GetConfiguration()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no configuration loaded")
	}
	return c.JSON(http.StatusOK, conf)
}

// handleReloadConfig triggers a reload of the worker configuration file.
func (s *Server) handleReloadConfig(c echo.Context) error {
	s.service.ReloadConfiguration()
	return c.JSON(http.StatusOK, struct{}{})
}

// handleGetDevices returns the state of all known devices.
func (s *Server) handleGetDevices(c echo.Context) error {
	result := struct {
		Devices      []model.DeviceActual `json:"devices"`
		Unconfigured []string             `json:"unconfigured,omitempty"`
	}{
		Devices:      s.service.GetDeviceActuals(),
		Unconfigured: s.service.GetUnconfiguredDeviceIDs(),
	}
	return c.JSON(http.StatusOK, result)
}

// handleGetFixtures returns the actual state of all configured fixtures.
func (s *Server) handleGetFixtures(c echo.Context) error {
	return c.JSON(http.StatusOK, s.service.GetFixtureActuals())
}

// handleGetFixture returns the actual state of a single fixture.
func (s *Server) handleGetFixture(c echo.Context) error {
	id := c.Param("id")
	for _, actual := range s.service.GetFixtureActuals() {
		if actual.ID == id {
			return c.JSON(http.StatusOK, actual)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("fixture '%s' not found", id))
}

// handleSetFixture injects a request for a new fixture state.
func (s *Server) handleSetFixture(c echo.Context) error {
	var msg model.FixtureSetRequest
	if err := c.Bind(&msg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	msg.ID = c.Param("id")
	if err := s.service.SetFixtureRequest(c.Request().Context(), msg); err != nil {
		if model.IsValidationError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if objects.IsNotReady(err) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, struct{}{})
}
