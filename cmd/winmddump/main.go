// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/saferwall/winmd"
	"github.com/spf13/cobra"
)

var (
	all       bool
	verbose   bool
	tables    bool
	rowValues bool
	strings   bool
	onlyTable string
)

func prettyPrint(buff []byte) string {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, buff, "", "\t"); err != nil {
		log.Println("JSON indent error: ", err)
		return string(buff)
	}
	return prettyJSON.String()
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func columnValue(rec winmd.Record, col winmd.Column, idx int) (interface{}, error) {
	switch col.Kind {
	case winmd.KindConstant:
		switch col.Width {
		case 1:
			return rec.U8(idx)
		case 2:
			return rec.U16(idx)
		case 4:
			return rec.U32(idx)
		default:
			return rec.U64(idx)
		}
	case winmd.KindHeapIndex:
		switch col.Heap {
		case winmd.HeapString:
			return rec.StringIndex(idx)
		case winmd.HeapGUID:
			return rec.GUIDIndex(idx)
		default:
			return rec.BlobIndex(idx)
		}
	case winmd.KindSimpleIndex:
		target, row, err := rec.SimpleIndex(idx)
		return fmt.Sprintf("%s[%d]", target, row), err
	default:
		target, row, err := rec.CodedIndex(idx)
		return fmt.Sprintf("%s[%d]", target, row), err
	}
}

func dumpTable(img *winmd.Image, view winmd.TableView, cmd *cobra.Command) {
	def := winmd.TableDefFor(view.Number)
	if def == nil {
		return
	}
	fmt.Printf("%s (%d rows)\n", def.Name, view.RowCount)
	if !rowValues {
		return
	}
	for i := uint32(0); i < view.RowCount; i++ {
		rec, err := view.Row(i)
		if err != nil {
			log.Printf("%s row %d: %v", def.Name, i, err)
			continue
		}
		vals := make([]string, len(def.Columns))
		for c, col := range def.Columns {
			v, err := columnValue(rec, col, c)
			if err != nil {
				vals[c] = fmt.Sprintf("%s=<%v>", col.Name, err)
				continue
			}
			if col.Kind == winmd.KindHeapIndex && col.Heap == winmd.HeapString && strings {
				s, _ := img.Heaps.String(v.(uint32))
				vals[c] = fmt.Sprintf("%s=%q", col.Name, s)
				continue
			}
			vals[c] = fmt.Sprintf("%s=%v", col.Name, v)
		}
		fmt.Printf("  [%d] %s\n", i, joinStrings(vals))
	}
}

func joinStrings(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

func dumpImage(filename string, cmd *cobra.Command) {
	log.Printf("Processing filename %s", filename)

	img, err := winmd.Open(filename, nil)
	if err != nil {
		log.Printf("Error while opening file: %s, reason: %s", filename, err)
		return
	}
	defer img.Close()

	wantTables, _ := cmd.Flags().GetBool("tables")
	wantAll, _ := cmd.Flags().GetBool("all")
	only, _ := cmd.Flags().GetString("table")

	if wantTables || wantAll {
		for _, view := range img.Tables.Iter() {
			if only != "" && view.Number.String() != only {
				continue
			}
			dumpTable(img, view, cmd)
		}
	}

	if wantAll {
		header, _ := json.Marshal(struct {
			MajorVersion uint8
			MinorVersion uint8
			Valid        uint64
			Sorted       uint64
		}{img.Tables.MajorVersion(), img.Tables.MinorVersion(), img.Tables.Valid(), img.Tables.Sorted()})
		fmt.Println(prettyPrint(header))
	}
}

func parse(cmd *cobra.Command, args []string) {
	filePath := args[0]

	if !isDirectory(filePath) {
		dumpImage(filePath, cmd)
		return
	}

	var fileList []string
	filepath.Walk(filePath, func(path string, f os.FileInfo, err error) error {
		if err == nil && !isDirectory(path) {
			fileList = append(fileList, path)
		}
		return nil
	})
	for _, file := range fileList {
		dumpImage(file, cmd)
	}
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "winmddump",
		Short: "A .winmd / managed PE metadata dumper",
		Long:  "Dumps the ECMA-335 tables stream of .winmd and managed PE files, built for fast metadata inspection by Saferwall",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Long:  "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("You are using version 0.0.1")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Dumps the file",
		Long:  "Dumps the metadata tables of a .winmd or managed PE file",
		Args:  cobra.MinimumNArgs(1),
		Run:   parse,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	dumpCmd.Flags().BoolVarP(&tables, "tables", "t", false, "Dump table row counts")
	dumpCmd.Flags().BoolVarP(&rowValues, "rows", "r", false, "Dump row field values (requires --tables or --all)")
	dumpCmd.Flags().BoolVarP(&strings, "strings", "s", false, "Resolve #Strings heap indices to their text")
	dumpCmd.Flags().StringVar(&onlyTable, "table", "", "Limit output to a single table by name")
	dumpCmd.Flags().BoolVar(&all, "all", false, "Dump everything")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
