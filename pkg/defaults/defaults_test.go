// Copyright (c) 2025, the fleethealth authors.
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

package defaults

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		{"ReadinessTimeout", ReadinessTimeout, 30 * time.Second, 10 * time.Minute},
		{"ReadinessInterval", ReadinessInterval, 100 * time.Millisecond, 10 * time.Second},
		{"FetchRetryInterval", FetchRetryInterval, 100 * time.Millisecond, 10 * time.Second},
		{"HTTPClientTimeout", HTTPClientTimeout, 1 * time.Second, 30 * time.Second},
		{"ServerReadTimeout", ServerReadTimeout, 5 * time.Second, 30 * time.Second},
		{"ServerWriteTimeout", ServerWriteTimeout, 15 * time.Second, 60 * time.Second},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 5 * time.Second, 60 * time.Second},
		{"SSHDialTimeout", SSHDialTimeout, 1 * time.Second, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s = %v, below sane minimum %v", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s = %v, above sane maximum %v", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestReadinessIntervalShorterThanTimeout(t *testing.T) {
	if ReadinessInterval >= ReadinessTimeout {
		t.Errorf("ReadinessInterval (%v) must be shorter than ReadinessTimeout (%v)",
			ReadinessInterval, ReadinessTimeout)
	}
}
