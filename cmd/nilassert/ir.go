//  Copyright (c) 2025 Uber Technologies, Inc.
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

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/nilassert/driver"
	"go.uber.org/nilassert/ir"
	"go.uber.org/nilassert/unitfile"
)

func newIRCmd(global *globalFlags) *cobra.Command {
	var out string
	var java bool
	cmd := &cobra.Command{
		Use:   "ir [flags] UNIT_FILE",
		Short: "Materialize the IR stubs of the functions of a unit file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := unitfile.Load(args[0])
			if err != nil {
				return err
			}
			var opts []ir.Option
			if java {
				opts = append(opts, ir.WithOrigin(ir.ExternalJavaDeclarationStub))
			}
			m := ir.NewMaterializer(ir.Translator{}, opts...)

			snapshots, matErr := driver.Materialize(cmd.Context(), m, u.Functions, global.driverOptions(cmd.ErrOrStderr()))
			var built []*ir.FunctionSnapshot
			for _, s := range snapshots {
				if s == nil {
					continue
				}
				built = append(built, s)
				fmt.Fprintln(cmd.OutOrStdout(), formatSnapshot(s))
			}
			if out == "" {
				return matErr
			}
			data, err := ir.EncodeSnapshots(built)
			if err != nil {
				return errors.Join(matErr, err)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return errors.Join(matErr, fmt.Errorf("write ir snapshots: %w", err))
			}
			return matErr
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the msgpack-encoded snapshots to this file")
	cmd.Flags().BoolVar(&java, "java", false, "mark the stubs as declarations compiled from Java")
	return cmd
}

func formatSnapshot(s *ir.FunctionSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FUN %s name:%s visibility:%s", s.Origin, s.Name, s.Visibility)
	if s.IsInline {
		b.WriteString(" [inline]")
	}
	fmt.Fprintf(&b, " (%s)\n", s.ID)
	if s.DispatchReceiver != nil {
		fmt.Fprintf(&b, "  %s: %s\n", s.DispatchReceiver.Name, s.DispatchReceiver.Type)
	}
	if s.ExtensionReceiver != nil {
		fmt.Fprintf(&b, "  %s: %s\n", s.ExtensionReceiver.Name, s.ExtensionReceiver.Type)
	}
	for _, p := range s.ValueParameters {
		fmt.Fprintf(&b, "  VALUE_PARAMETER %s index:%d type:%s\n", p.Name, p.Index, p.Type)
	}
	fmt.Fprintf(&b, "  returns: %s", s.ReturnType)
	if s.InitialSignature != "" {
		fmt.Fprintf(&b, "\n  initial signature: %s", s.InitialSignature)
	}
	return b.String()
}
