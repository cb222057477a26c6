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

// Package serializer renders and loads structured data in the formats the
// CLI and the exporter daemon speak.
//
// Three output formats are supported:
//   - JSON: machine-readable, indented
//   - YAML: human-readable configuration format
//   - Table: human-readable tabular output with flattened keys
//
// Usage:
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatJSON, path)
//	defer w.(serializer.Closer).Close()
//	if err := w.Serialize(ctx, report); err != nil {
//		...
//	}
//
// For loading configuration files, FromFile detects the format from the
// file extension:
//
//	cfg, err := serializer.FromFile[Config]("config.yml")
package serializer

import "context"

// Serializer renders a value to the destination chosen at construction.
type Serializer interface {
	Serialize(ctx context.Context, v any) error
}

// Closer is implemented by Serializers that hold resources (file handles).
type Closer interface {
	Close() error
}
