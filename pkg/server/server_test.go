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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lednet/LedWorker/model"
	"github.com/lednet/LedWorker/pkg/service/objects"
)

// fakeService implements the Service interface for handler tests.
type fakeService struct {
	config        *model.LocalConfiguration
	actuals       []model.FixtureActual
	deviceActuals []model.DeviceActual
	lastRequest   *model.FixtureSetRequest
	requestErr    error
	reloadCalls   int
	fixtureIDs    []string
	deviceIDs     []string
	brokenIDs     []string
	brokenDevIDs  []string
}

func (s *fakeService) ModuleID() string { return "tester" }

func (s *fakeService) Uptime() time.Duration { return time.Minute }

func (s *fakeService) GetConfiguration() (model.LocalConfiguration, bool) {
	if s.config == nil {
		return model.LocalConfiguration{}, false
	}
	return *s.config, true
}

func (s *fakeService) ReloadConfiguration() { s.reloadCalls++ }

func (s *fakeService) SetFixtureRequest(ctx context.Context, msg model.FixtureSetRequest) error {
	if s.requestErr != nil {
		return s.requestErr
	}
	s.lastRequest = &msg
	return nil
}

func (s *fakeService) GetFixtureActuals() []model.FixtureActual { return s.actuals }

func (s *fakeService) GetConfiguredFixtureIDs() []string { return s.fixtureIDs }

func (s *fakeService) GetUnconfiguredFixtureIDs() []string { return s.brokenIDs }

func (s *fakeService) GetConfiguredDeviceIDs() []string { return s.deviceIDs }

func (s *fakeService) GetUnconfiguredDeviceIDs() []string { return s.brokenDevIDs }

func (s *fakeService) GetDeviceActuals() []model.DeviceActual { return s.deviceActuals }

func newTestServer(svc Service) *Server {
	s, err := New(Config{}, zerolog.Nop(), nil, svc)
	if err != nil {
		panic(err)
	}
	return s
}

// invoke runs the given handler on a fresh echo context and returns the
// response recorder.
func invoke(t *testing.T, handler echo.HandlerFunc, method, target, body string, params ...string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return rec, handler(c)
}

func TestHandleGetWorker(t *testing.T) {
	svc := &fakeService{
		fixtureIDs: []string{"cabin", "dome"},
		deviceIDs:  []string{"led1"},
		brokenIDs:  []string{"spot"},
	}
	s := newTestServer(svc)

	rec, err := invoke(t, s.handleGetWorker, http.MethodGet, "/api/v1/worker", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var info model.WorkerInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "tester", info.ID)
	assert.Equal(t, int64(60), info.Uptime)
	assert.Equal(t, []string{"cabin", "dome"}, info.ConfiguredFixtureIDs)
	assert.Equal(t, []string{"spot"}, info.UnconfiguredFixtureIDs)
	assert.Equal(t, []string{"led1"}, info.ConfiguredDeviceIDs)
}

func TestHandleGetConfig(t *testing.T) {
	svc := &fakeService{}
	s := newTestServer(svc)

	// No configuration loaded yet
	_, err := invoke(t, s.handleGetConfig, http.MethodGet, "/api/v1/config", "")
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)

	// With configuration
	svc.config = &model.LocalConfiguration{
		Fixtures: []model.Fixture{
			{ID: "cabin", Type: model.FixtureTypeDimmer},
		},
	}
	rec, err := invoke(t, s.handleGetConfig, http.MethodGet, "/api/v1/config", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	var conf model.LocalConfiguration
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conf))
	require.Len(t, conf.Fixtures, 1)
	assert.Equal(t, "cabin", conf.Fixtures[0].ID)
}

func TestHandleReloadConfig(t *testing.T) {
	svc := &fakeService{}
	s := newTestServer(svc)

	rec, err := invoke(t, s.handleReloadConfig, http.MethodPost, "/api/v1/config/reload", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.reloadCalls)
}

func TestHandleGetDevices(t *testing.T) {
	svc := &fakeService{
		deviceActuals: []model.DeviceActual{
			{ID: "led1", MaxValue: 4095, Values: make([]int, 16)},
		},
		brokenDevIDs: []string{"led2"},
	}
	s := newTestServer(svc)

	rec, err := invoke(t, s.handleGetDevices, http.MethodGet, "/api/v1/devices", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Devices      []model.DeviceActual `json:"devices"`
		Unconfigured []string             `json:"unconfigured"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Devices, 1)
	assert.Equal(t, "led1", result.Devices[0].ID)
	assert.Equal(t, 4095, result.Devices[0].MaxValue)
	assert.Len(t, result.Devices[0].Values, 16)
	assert.Equal(t, []string{"led2"}, result.Unconfigured)
}

func TestHandleGetFixture(t *testing.T) {
	svc := &fakeService{
		actuals: []model.FixtureActual{
			{ID: "cabin", Values: map[string]int{"value": 2048}},
			{ID: "dome", Values: map[string]int{"value": 0}},
		},
	}
	s := newTestServer(svc)

	rec, err := invoke(t, s.handleGetFixture, http.MethodGet, "/api/v1/fixtures/dome", "", "id", "dome")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	var actual model.FixtureActual
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &actual))
	assert.Equal(t, "dome", actual.ID)

	_, err = invoke(t, s.handleGetFixture, http.MethodGet, "/api/v1/fixtures/nope", "", "id", "nope")
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestHandleSetFixture(t *testing.T) {
	svc := &fakeService{}
	s := newTestServer(svc)

	body := `{"values":{"value":1024}}`
	rec, err := invoke(t, s.handleSetFixture, http.MethodPost, "/api/v1/fixtures/cabin", body, "id", "cabin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastRequest)
	assert.Equal(t, "cabin", svc.lastRequest.ID)
	assert.Equal(t, 1024, svc.lastRequest.Values["value"])
}

func TestHandleSetFixtureNotReady(t *testing.T) {
	svc := &fakeService{requestErr: objects.NotReadyError}
	s := newTestServer(svc)

	body := `{"values":{"value":1}}`
	_, err := invoke(t, s.handleSetFixture, http.MethodPost, "/api/v1/fixtures/cabin", body, "id", "cabin")
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Code)
}
