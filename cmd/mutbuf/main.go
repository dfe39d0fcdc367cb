// Copyright 2023-2026 the mutbuf authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command mutbuf compiles schemas and reads, writes and compacts buffer
// snapshot files from the shell.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	log "charm.land/log/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mutbuf/mutbuf"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

func main() {
	root := &cobra.Command{
		Use:           "mutbuf",
		Short:         "Schema-driven mutable binary buffers",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log what each step does")
	root.PersistentPreRun = func(*cobra.Command, []string) {
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	}

	root.AddCommand(schemaCmd(), newCmd(), setCmd(), getCmd(), delCmd(), jsonCmd(), bytesCmd(), compactCmd())

	if err := root.Execute(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Validate and convert schemas",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "check <schema.json>",
			Short: "Validate a JSON schema and print its compiled byte form",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				f, err := mutbuf.NewFactory(data, mutbuf.WithSchemaValidation())
				if err != nil {
					return err
				}
				compiled := f.SchemaBytes()
				logger.Debug("schema compiled", "bytes", len(compiled))
				fmt.Println(hex.EncodeToString(compiled))
				return nil
			},
		},
		&cobra.Command{
			Use:   "json <schema.hex>",
			Short: "Print the JSON form of a hex-encoded byte schema",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				raw, err := hex.DecodeString(args[0])
				if err != nil {
					return err
				}
				f, err := mutbuf.NewFactoryFromBytes(raw)
				if err != nil {
					return err
				}
				out, err := f.SchemaJSON()
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			},
		},
	)
	return cmd
}

func newCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "new <schema.json> <out.mb>",
		Short: "Create an empty buffer snapshot from a schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			f, err := mutbuf.NewFactory(data, mutbuf.WithAddressWidth(width))
			if err != nil {
				return err
			}
			buf := f.NewBuffer()
			logger.Debug("buffer created", "width", width, "bytes", buf.CalcBytes().Current)
			return writeSnapshot(buf, args[1])
		},
	}
	registerWidthFlag(cmd.Flags(), &width)
	return cmd
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <buf.mb> <json-value> [path...]",
		Short: "Write a value at a path",
		Args:  cobra.MinimumNArgs(2),
		RunE: withBuffer(func(buf *mutbuf.Buffer, args []string) (bool, error) {
			var v any
			if err := mutbuf.UnmarshalJSON([]byte(args[0]), &v); err != nil {
				return false, fmt.Errorf("value is not valid JSON: %w", err)
			}
			return true, buf.SetLiteral(v, args[1:]...)
		}),
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <buf.mb> [path...]",
		Short: "Read the value at a path",
		Args:  cobra.MinimumNArgs(1),
		RunE: withBuffer(func(buf *mutbuf.Buffer, args []string) (bool, error) {
			v, ok, err := buf.Get(args...)
			if err != nil {
				return false, err
			}
			if !ok {
				fmt.Println("null")
				return false, nil
			}
			out, err := mutbuf.MarshalJSON(v)
			if err != nil {
				return false, err
			}
			fmt.Println(string(out))
			return false, nil
		}),
	}
}

func delCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del <buf.mb> [path...]",
		Short: "Clear the value at a path",
		Args:  cobra.MinimumNArgs(1),
		RunE: withBuffer(func(buf *mutbuf.Buffer, args []string) (bool, error) {
			cleared, err := buf.Del(args...)
			if err != nil {
				return false, err
			}
			logger.Debug("del", "cleared", cleared)
			return cleared, nil
		}),
	}
}

func jsonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "json <buf.mb>",
		Short: "Render the whole buffer as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: withBuffer(func(buf *mutbuf.Buffer, _ []string) (bool, error) {
			out, err := buf.ToJSON()
			if err != nil {
				return false, err
			}
			fmt.Println(string(out))
			return false, nil
		}),
	}
}

func bytesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bytes <buf.mb>",
		Short: "Report current size and the size compaction would reach",
		Args:  cobra.ExactArgs(1),
		RunE: withBuffer(func(buf *mutbuf.Buffer, _ []string) (bool, error) {
			sizes := buf.CalcBytes()
			fmt.Printf("current: %d\nafter compaction: %d\n", sizes.Current, sizes.AfterCompaction)
			return false, nil
		}),
	}
}

func compactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compact <buf.mb>",
		Short: "Rewrite the snapshot with a compacted buffer",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			buf, err := readSnapshot(args[0])
			if err != nil {
				return err
			}
			before := buf.CalcBytes().Current
			compacted, err := buf.Compact()
			if err != nil {
				return err
			}
			logger.Info("compacted", "before", before, "after", compacted.CalcBytes().Current)
			return writeSnapshot(compacted, args[0])
		},
	}
}

// withBuffer opens the snapshot named by the first argument, runs fn with
// the remaining arguments, and writes the snapshot back when fn mutated it.
func withBuffer(fn func(buf *mutbuf.Buffer, args []string) (bool, error)) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		buf, err := readSnapshot(args[0])
		if err != nil {
			return err
		}
		mutated, err := fn(buf, args[1:])
		if err != nil {
			return err
		}
		if mutated {
			return writeSnapshot(buf, args[0])
		}
		return nil
	}
}

func registerWidthFlag(flags *pflag.FlagSet, width *int) {
	flags.IntVarP(width, "width", "w", 2, "address width in bytes: 1, 2 or 4")
}

func readSnapshot(path string) (*mutbuf.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	_, buf, err := mutbuf.OpenSnapshot(f)
	return buf, err
}

func writeSnapshot(buf *mutbuf.Buffer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := buf.Snapshot(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
