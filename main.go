// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/workerpack/workerpack/cmd/workerpack"

func main() {
	cmd.Execute()
}
