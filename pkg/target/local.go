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

package target

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fleetops/fleethealth/pkg/errors"
)

// LocalRunner executes commands on the machine the tool runs on.
type LocalRunner struct{}

// NewLocalRunner creates a Runner for the local host.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run executes the command locally and returns its combined output.
func (r *LocalRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	slog.Debug("running local command", "cmd", name, "args", args)

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, errors.WrapWithContext(
			errors.ErrCodeInternal,
			"local command failed",
			err,
			map[string]any{
				"cmd":    name,
				"args":   args,
				"output": output,
			},
		)
	}
	return output, nil
}

// Upload writes data to a local path, creating parent directories.
func (r *LocalRunner) Upload(ctx context.Context, data []byte, path string, mode uint32) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create directory", err)
	}
	if err := os.WriteFile(path, data, fs.FileMode(mode)); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal,
			"failed to write file", err,
			map[string]any{"path": path})
	}
	return nil
}

// Host returns "localhost".
func (r *LocalRunner) Host() string {
	return "localhost"
}

// Close is a no-op for local targets.
func (r *LocalRunner) Close() error {
	return nil
}
