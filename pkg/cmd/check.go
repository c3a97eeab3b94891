// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"

	"github.com/conjure-cp/conjure-go/pkg/ast"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] model.json",
	Short: "load a model's JSON IR and report its shape and safety.",
	Long: `Decode a constraint model's JSON intermediate representation
and report the number of declarations and top-level constraints, and
whether every constraint is free of undischarged unsafe partial
operations.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		model, err := readModel(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		var names []ast.Name

		model.SymbolTable().Read(func(t *ast.SymbolTable) {
			names = t.Names()
		})

		unsafe := 0

		for _, c := range model.Root().Children() {
			if !c.IsSafe() {
				unsafe++
			}
		}

		fmt.Printf("%d declarations, %d constraints, %d unsafe\n", len(names), len(model.Root().Children()), unsafe)

		if unsafe > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
