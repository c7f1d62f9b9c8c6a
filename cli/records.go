// ABOUTME: Record subcommands: list, show, fields, add, update, delete and export
// ABOUTME: Writes go through entity forms so the CLI gets the same validation as the TUI
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/crmdesk/app"
	"github.com/harperreed/crmdesk/listview"
	"github.com/harperreed/crmdesk/models"
	"github.com/spf13/cobra"
)

const entitiesHelp = "contacts, companies, deals, leads, tasks or salesreps"

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// parseSets turns repeated key=value flags into a field map.
func parseSets(sets []string) (map[string]string, error) {
	values := make(map[string]string, len(sets))
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("--set wants key=value, got %q", s)
		}
		values[key] = value
	}
	return values, nil
}

// loadTable opens the workspace and loads one entity's list.
func loadTable(ctx context.Context, ws *app.Workspace, key string) (listview.Table, error) {
	e, err := ws.Entity(key)
	if err != nil {
		return nil, err
	}
	t := e.NewTable()
	if err := t.Load(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func printTable(out io.Writer, t listview.Table) error {
	if t.State() == listview.StateEmpty {
		_, err := fmt.Fprintf(out, "No %s found.\n", t.Plural())
		return err
	}
	rows := t.Rows()
	if len(rows) == 0 {
		_, err := fmt.Fprintf(out, "No %s match your search.\n", t.Plural())
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := []string{"ID"}
	for _, c := range t.Columns() {
		header = append(header, strings.ToUpper(c.Title))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\n", r.ID, strings.Join(r.Cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	shown, total := t.Count()
	_, err := fmt.Fprintf(out, "\nShowing %d of %d %s\n", shown, total, t.Plural())
	return err
}

func newListCmd(rt *runtime) *cobra.Command {
	var search, status, priority string
	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "List " + entitiesHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := rt.open(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			t, err := loadTable(cmd.Context(), ws, args[0])
			if err != nil {
				return err
			}
			t.SetSearch(search)
			if status != "" {
				if err := t.SetFilter("status", status); err != nil {
					return err
				}
			}
			if priority != "" {
				if err := t.SetFilter("priority", priority); err != nil {
					return err
				}
			}
			return printTable(cmd.OutOrStdout(), t)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive search term")
	cmd.Flags().StringVar(&status, "status", "", "exact task status")
	cmd.Flags().StringVar(&priority, "priority", "", "exact task priority")
	return cmd
}

func newShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <entity> <id>",
		Short: "Show one record as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			ws, err := rt.open(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			e, err := ws.Entity(args[0])
			if err != nil {
				return err
			}
			rec, err := e.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

func newFieldsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "fields <entity>",
		Short: "List the fields accepted by add and update",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := rt.open(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			e, err := ws.Entity(args[0])
			if err != nil {
				return err
			}
			f, err := e.NewForm()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tLABEL\tDEFAULT\tOPTIONS")
			for _, fld := range f.Fields() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", fld.Key, fld.Label, fld.Default, strings.Join(fld.Options, ", "))
			}
			return w.Flush()
		},
	}
}

// reportValidation lists every field error before returning it.
func reportValidation(errOut io.Writer, err error) error {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	keys := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(errOut, "  %s: %s\n", k, verr.Fields[k])
	}
	return errors.New("validation failed")
}

func saveCmd(rt *runtime, use, short string, nargs int, sets *[]string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := 0
			if nargs == 2 {
				var err error
				if id, err = parseID(args[1]); err != nil {
					return err
				}
			}
			values, err := parseSets(*sets)
			if err != nil {
				return err
			}
			ws, err := rt.open(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			e, err := ws.Entity(args[0])
			if err != nil {
				return err
			}
			saved, err := e.Save(cmd.Context(), id, values)
			if err != nil {
				return reportValidation(cmd.ErrOrStderr(), err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ID: %d\n", saved)
			return err
		},
	}
	cmd.Flags().StringArrayVar(sets, "set", nil, "field value as key=value (repeatable, see fields <entity>)")
	return cmd
}

func newAddCmd(rt *runtime) *cobra.Command {
	var sets []string
	return saveCmd(rt, "add <entity>", "Create a record", 1, &sets)
}

func newUpdateCmd(rt *runtime) *cobra.Command {
	var sets []string
	return saveCmd(rt, "update <entity> <id>", "Edit a record; unset fields keep their value", 2, &sets)
}

// stdinConfirm asks prompt on out and accepts y or yes.
func stdinConfirm(in io.Reader, out io.Writer) listview.Confirm {
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, _ := bufio.NewReader(in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

func newDeleteCmd(rt *runtime) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <entity> <id>",
		Short: "Delete a record after confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			ws, err := rt.open(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			t, err := loadTable(cmd.Context(), ws, args[0])
			if err != nil {
				return err
			}
			confirm := stdinConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirm = nil
			}
			deleted, err := t.Delete(cmd.Context(), id, confirm)
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newExportCmd(rt *runtime) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <entity>",
		Short: "Export every record of an entity to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notifier := printNotifier(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if output == "-" {
				notifier = printNotifier(cmd.ErrOrStderr(), cmd.ErrOrStderr())
			}
			ws, err := rt.openWith(cmd, notifier)
			if err != nil {
				return err
			}
			defer ws.Close()

			t, err := loadTable(cmd.Context(), ws, args[0])
			if err != nil {
				return err
			}
			file, err := t.Export()
			if err != nil {
				return err
			}
			if output == "-" {
				_, err := cmd.OutOrStdout().Write(append(file.Data, '\n'))
				return err
			}
			path := output
			if path == "" {
				path = file.Name
			}
			if err := os.WriteFile(path, file.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path, - for stdout (default is the export file name)")
	return cmd
}
