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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/nilassert/annotation"
)

func newDumpCmd() *cobra.Command {
	var slot string
	cmd := &cobra.Command{
		Use:   "dump [--slot KIND] STORE_FILE",
		Short: "Print the entries of an assertion store written by check --out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				kind     annotation.SlotKind
				filtered = slot != ""
			)
			if filtered {
				var ok bool
				if kind, ok = annotation.ParseSlotKind(slot); !ok {
					return fmt.Errorf("invalid --slot %q, want one of %s", slot, slotKindNames())
				}
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open store file: %w", err)
			}
			defer f.Close()

			s, err := annotation.Read(f)
			if err != nil {
				return err
			}
			entries := s.Entries()
			if filtered {
				entries = s.Slot(kind)
			}
			for _, e := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&slot, "slot", "", "only print the entries of this slot kind ("+slotKindNames()+")")
	return cmd
}

func slotKindNames() string {
	names := make([]string, 0, len(annotation.AllSlotKinds))
	for _, k := range annotation.AllSlotKinds {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}
