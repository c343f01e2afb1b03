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

package devices

import "github.com/pkg/errors"

var (
	maskAny = errors.WithStack

	// InvalidOutputError is returned when an output index is out of range.
	InvalidOutputError = errors.New("invalid output")
	// NotConfiguredError is returned when a device is used before it
	// has been configured.
	NotConfiguredError = errors.New("not configured")
)

// IsInvalidOutput returns true when the given error is (caused by) an
// InvalidOutputError.
func IsInvalidOutput(err error) bool {
	return errors.Cause(err) == InvalidOutputError
}

// IsNotConfigured returns true when the given error is (caused by) a
// NotConfiguredError.
func IsNotConfigured(err error) bool {
	return errors.Cause(err) == NotConfiguredError
}
