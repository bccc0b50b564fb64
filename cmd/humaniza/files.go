package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RichardoC/humaniza/internal/extract"
	"github.com/RichardoC/humaniza/internal/pdfgen"
)

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the text of a PDF, DOCX or TXT document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			text, err := extract.FromFile(filepath.Base(args[0]), data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func topdfCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "topdf <image>",
		Short: "Convert a JPEG, PNG or GIF image into an A4 PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = pdfgen.Filename(time.Now())
			}
			if !strings.EqualFold(filepath.Ext(out), ".pdf") {
				out += ".pdf"
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := pdfgen.FromImage(data, f); err != nil {
				_ = f.Close()
				_ = os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: humaniza-documento-<ms>.pdf)")
	return cmd
}
