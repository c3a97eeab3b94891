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
	"github.com/conjure-cp/conjure-go/pkg/rewrite"
	"github.com/conjure-cp/conjure-go/pkg/rules/sat"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	// registers the "cp" rule-set as a side effect of import.
	_ "github.com/conjure-cp/conjure-go/pkg/rules/cp"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [flags] model.json",
	Short: "rewrite a model's JSON IR towards a solver-specific normal form.",
	Long: `Ingest a constraint model's JSON intermediate representation,
run it to a fixed point under the chosen rule-set, and report the
resulting flat CP constraints or SAT/CNF clause count.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		target := GetString(cmd, "target")

		model, err := readModel(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		rules := rewrite.ResolveRuleSet([]string{target})
		if len(rules) == 0 {
			fmt.Fprintf(os.Stderr, "unknown rewrite target %q\n", target)
			os.Exit(1)
		}

		var runErr error

		model.SymbolTable().Write(func(symtab *ast.SymbolTable) {
			runErr = rewrite.Run(model, symtab, rules)

			if runErr == nil && target == "sat" {
				builder := sat.NewBuilder(model)
				runErr = sat.EncodeModel(builder, symtab, model)
			}
		})

		if runErr != nil {
			fmt.Fprintln(os.Stderr, runErr)
			os.Exit(1)
		}

		switch target {
		case "sat":
			fmt.Printf("%d clauses over %d constraints\n", len(model.Clauses()), len(model.Root().Children()))
		default:
			fmt.Printf("%d flat constraints\n", len(model.Root().Children()))

			for _, c := range model.Root().Children() {
				fmt.Printf("  %T\n", c)
			}
		}
	},
}

func init() {
	rewriteCmd.Flags().String("target", "cp", `rewrite target rule-set ("cp" or "sat")`)
	rootCmd.AddCommand(rewriteCmd)
}
