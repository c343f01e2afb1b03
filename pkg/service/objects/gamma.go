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

package objects

import "math"

// defaultGamma is the gamma correction exponent used when a fixture
// does not configure its own.
const defaultGamma = 2.2

// buildGammaTable maps 8 bit color components to grayscale values in
// the 0..maxValue range, applying the given gamma correction exponent.
func buildGammaTable(gamma float64, maxValue int) [256]uint16 {
	var table [256]uint16
	for i := range table {
		in := float64(i) / 255.0
		out := math.Pow(in, gamma) * float64(maxValue)
		table[i] = uint16(math.Round(out))
	}
	return table
}
