package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/lednet/LedWorker/model"
	"github.com/lednet/LedWorker/pkg/service/bridge"
	"github.com/lednet/LedWorker/pkg/service/devices"
	"github.com/lednet/LedWorker/pkg/service/intf"
	"github.com/lednet/LedWorker/pkg/service/mqtt"
	"github.com/lednet/LedWorker/pkg/service/objects"
)

// Service contains the API exposed by the worker service
type Service interface {
	// Run the worker service until the given context is cancelled.
	Run(ctx context.Context) error
	intf.GetRequestService
	intf.GetDeviceLister
}

type Config struct {
	model.LocalConfiguration
	ProgramVersion string
	ModuleID       string
}

type Dependencies struct {
	Log         zerolog.Logger
	Bridge      bridge.API
	MQTTService mqtt.Service
}

// NewService instantiates a new Service.
func NewService(config Config, deps Dependencies) (Service, error) {
	return &service{
		config:       config,
		Dependencies: deps,
	}, nil
}

type service struct {
	config Config
	Dependencies
	devService devices.Service
	objService objects.Service
}

// Run the worker service until the given context is cancelled.
func (s *service) Run(ctx context.Context) error {
	log := s.Log
	// Build devices service
	log.Debug().Msg("build devices service")
	devService, err := devices.NewService(s.config.Devices, s.Bridge, s.Log)
	if err != nil {
		log.Debug().Err(err).Msg("devices.NewService failed")
		return fmt.Errorf("devices.NewService failed: %w", err)
	}
	s.devService = devService

	defer func() {
		log.Debug().Msg("closing devices service")
		devService.Close(context.Background())
	}()

	// Configure devices
	log.Debug().Msg("configure devices")
	if err := devService.Configure(ctx); err != nil {
		// Log error
		log.Error().Err(err).Msg("Not all devices are configured")
	}
	// Stop fast if context canceled
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Build objects service
	log.Debug().Msg("build objects service")
	objService, err := objects.NewService(s.config.ModuleID, s.config.ProgramVersion,
		s.config.Fixtures, devService, s.MQTTService,
		s.Log.With().Str("component", "worker.objects").Logger())
	if err != nil {
		log.Debug().Err(err).Msg("objects.NewService failed")
		return fmt.Errorf("objects.NewService failed: %w", err)
	}
	s.objService = objService

	// Configure objects
	s.Log.Debug().Msg("configure objects")
	if err := objService.Configure(ctx); err != nil {
		// Log error
		s.Log.Error().Err(err).Msg("Not all objects are configured")
	}
	// Stop fast if context canceled
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Run devices & objects
	g, lctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Debug().Msg("run devices")
		if err := devService.Run(lctx); err != nil {
			log.Error().Err(err).Msg("Run devices failed")
			return fmt.Errorf("failed to run devices: %w", err)
		}
		log.Debug().Msg("run devices ended")
		return nil
	})
	g.Go(func() error {
		s.Log.Debug().Msg("run objects")
		if err := objService.Run(lctx); err != nil {
			log.Error().Err(err).Msg("Run objects failed")
			return fmt.Errorf("failed to run objects: %w", err)
		}
		s.Log.Debug().Msg("run objects ended")
		return nil
	})
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "Wait failed")
	}

	return nil
}

// GetRequestService returns the fixture service of the worker (if any).
func (s *service) GetRequestService() intf.RequestService {
	if os := s.objService; os != nil {
		return os
	}
	return nil
}

// GetDeviceLister returns the device service of the worker (if any).
func (s *service) GetDeviceLister() intf.DeviceLister {
	if ds := s.devService; ds != nil {
		return ds
	}
	return nil
}
