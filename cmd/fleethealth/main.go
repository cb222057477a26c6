/*
Copyright © 2025 the fleethealth authors
SPDX-License-Identifier: Apache-2.0
*/
package main

import "github.com/fleetops/fleethealth/pkg/cli"

func main() {
	cli.Execute()
}
