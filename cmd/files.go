// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/gnomon/pkg/gcode"
)

var filesLong bool

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List G-code files on the printer's SD card",
	Long: `Request the SD card listing (M20) and print it as a table.

The short (8.3) name is the one to pass to "print". Use --long to ask the
firmware for long file names as well (M20 L).`,
	RunE: runFiles,
}

func init() {
	rootCmd.AddCommand(filesCmd)
	filesCmd.Flags().BoolVarP(&filesLong, "long", "l", false, "Request long file names")
}

func runFiles(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("long") {
		cfg.Engine.LongFilenames = filesLong
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := openSession(ctx, sessionHooks{}, "")
	if err != nil {
		return err
	}
	defer s.Close()

	go func() {
		<-ctx.Done()
		s.closeConn()
	}()
	go s.engine.Run(ctx)

	listCtx, listCancel := context.WithTimeout(ctx, listTimeout())
	defer listCancel()

	files, err := s.engine.ListFiles(listCtx)
	if err != nil {
		return err
	}

	fmt.Println(renderFileTable(files))
	fmt.Printf("%d file(s)\n", len(files))
	return nil
}

func renderFileTable(files []gcode.FileEntry) string {
	rows := make([][]string, 0, len(files))
	for i, f := range files {
		rows = append(rows, []string{strconv.Itoa(i + 1), f.Name, f.LongName, formatBytes(f.Size)})
	}
	return renderTable(
		[]string{"#", "Name", "Long name", "Size"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	)
}
