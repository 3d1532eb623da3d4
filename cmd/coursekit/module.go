package main

import (
	"fmt"

	"coursekit/internal/editor"

	"github.com/spf13/cobra"
)

var moduleCmd = &cobra.Command{
	Use:   "module",
	Short: "Edit the modules of the active course",
}

var moduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a module",
	RunE: func(cmd *cobra.Command, args []string) error {
		u := moduleUpdateFromFlags(cmd)

		a, err := newApp(cmd, "AddModule")
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.AddModule(cmd.Context(), u)
		if err != nil {
			return err
		}
		fmt.Printf("Added module %s\n", id)
		return nil
	},
}

var moduleEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := moduleUpdateFromFlags(cmd)
		if u == (editor.ModuleUpdate{}) {
			return fmt.Errorf("nothing to change")
		}

		a, err := newApp(cmd, "UpdateModule")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Edit(cmd.Context(), func(s *editor.Session) error {
			ok, err := s.UpdateModule(args[0], u)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("module %s not found", args[0])
			}
			return nil
		})
	},
}

func moduleUpdateFromFlags(cmd *cobra.Command) editor.ModuleUpdate {
	var u editor.ModuleUpdate
	f := cmd.Flags()

	if f.Changed("title") {
		v, _ := f.GetString("title")
		u.Title = &v
	}
	if f.Changed("description") {
		v, _ := f.GetString("description")
		u.Description = &v
	}
	u.ClearDescription, _ = f.GetBool("clear-description")
	if f.Changed("required") {
		v, _ := f.GetBool("required")
		u.Required = &v
	}
	return u
}

var moduleRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove a module and its lessons",
	Long:  "Remove a module and its lessons. Modules that exist on the server are deleted there immediately.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "RemoveModule")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Edit(cmd.Context(), func(s *editor.Session) error {
			ok, err := s.RemoveModule(cmd.Context(), args[0])
			return removed("module", args[0], ok, err)
		})
	},
}

// removed turns the result of a remove call into a CLI error.
func removed(kind, id string, ok bool, err error) error {
	if err != nil {
		return fmt.Errorf("removing %s %s: %w", kind, id, err)
	}
	if !ok {
		return fmt.Errorf("%s %s not found", kind, id)
	}
	fmt.Printf("Removed %s %s\n", kind, id)
	return nil
}

var moduleMvCmd = &cobra.Command{
	Use:   "mv FROM [TO]",
	Short: "Move a module before another one, or to the end with --end",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		toEnd, _ := cmd.Flags().GetBool("end")
		if toEnd == (len(args) == 2) {
			return fmt.Errorf("give either a target module or --end")
		}

		a, err := newApp(cmd, "MoveModule")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Edit(cmd.Context(), func(s *editor.Session) error {
			var ok bool
			if toEnd {
				ok = s.MoveModuleToEnd(args[0])
			} else {
				ok = s.MoveModule(args[0], args[1])
			}
			if !ok {
				return fmt.Errorf("module not moved (unknown id or already in place)")
			}
			return nil
		})
	},
}

func addModuleFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Module title")
	cmd.Flags().String("description", "", "Module description")
	cmd.Flags().Bool("clear-description", false, "Unset the description")
	cmd.Flags().Bool("required", false, "Module is required")
}

func init() {
	moduleCmd.AddCommand(moduleAddCmd)
	moduleCmd.AddCommand(moduleEditCmd)
	moduleCmd.AddCommand(moduleRmCmd)
	moduleCmd.AddCommand(moduleMvCmd)

	addModuleFlags(moduleAddCmd)
	addModuleFlags(moduleEditCmd)
	moduleMvCmd.Flags().Bool("end", false, "Move to the end of the course")
}
