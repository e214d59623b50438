package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stacklok/asset-librarian/internal/library"
	"github.com/stacklok/asset-librarian/internal/service"
	"github.com/stacklok/asset-librarian/internal/storage"
)

// Output formats accepted by --output
const (
	formatTable = "table"
	formatJSON  = "json"
)

// addOutputFlag adds --output to a command. Without it, tables are printed to
// terminals and JSON everywhere else.
func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output format (table|json)")
}

// outputFormat resolves the --output flag for the command's writer
func outputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", fmt.Errorf("failed to get output flag: %w", err)
	}

	switch format {
	case formatTable, formatJSON:
		return format, nil
	case "":
		if isTerminal(cmd.OutOrStdout()) {
			return formatTable, nil
		}
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q: expected %s or %s", format, formatTable, formatJSON)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	cols := make([]any, len(header))
	for i, h := range header {
		cols[i] = h
	}
	table.Header(cols...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to build table: %w", err)
		}
	}
	return table.Render()
}

// printOutput prints the libraries of a partition run
func printOutput(cmd *cobra.Command, out *storage.Output) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if format == formatJSON {
		return writeJSON(w, out)
	}

	rows := make([][]string, 0, len(out.Libraries)+1)
	for _, lib := range out.Libraries {
		rows = append(rows, []string{
			lib.Name,
			strconv.Itoa(len(lib.Assets)),
			strconv.FormatBool(lib.Fallthrough),
			lib.BinaryFile,
		})
	}
	rows = append(rows, []string{"(remaining)", strconv.Itoa(len(out.Remaining)), "", ""})
	return renderTable(w, []string{"Library", "Assets", "Fallthrough", "Binary File"}, rows)
}

// printLibraryList prints stored library summaries
func printLibraryList(cmd *cobra.Command, list *service.LibraryList) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if format == formatJSON {
		return writeJSON(w, list)
	}

	rows := make([][]string, 0, len(list.Libraries))
	for _, lib := range list.Libraries {
		rows = append(rows, []string{
			lib.Name,
			strconv.Itoa(lib.AssetCount),
			strconv.FormatBool(lib.Fallthrough),
		})
	}
	return renderTable(w, []string{"Library", "Assets", "Fallthrough"}, rows)
}

// printRefs prints the assets of one library
func printRefs(cmd *cobra.Command, v any, refs []library.Ref) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if format == formatJSON {
		return writeJSON(w, v)
	}

	rows := make([][]string, 0, len(refs))
	for _, ref := range refs {
		bank := ""
		if ref.SoundBankID != 0 {
			bank = strconv.FormatUint(uint64(ref.SoundBankID), 10)
		}
		rows = append(rows, []string{
			ref.Type.String(),
			strconv.FormatUint(uint64(ref.ID), 10),
			ref.Name,
			bank,
		})
	}
	return renderTable(w, []string{"Type", "ID", "Name", "Sound Bank"}, rows)
}
