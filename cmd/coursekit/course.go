package main

import (
	"fmt"
	"strings"

	"coursekit/internal/editor"
	"coursekit/internal/model"

	"github.com/spf13/cobra"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Manage courses",
}

var courseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListCourses")
		if err != nil {
			return err
		}
		defer a.Close()

		courses, err := a.ListCourses(cmd.Context())
		if err != nil {
			return err
		}
		if len(courses) == 0 {
			fmt.Println("No courses.")
			return nil
		}

		for _, c := range courses {
			marker := " "
			if c.Active {
				marker = "*"
			}
			draft := ""
			if c.HasDraft {
				draft = "  [draft]"
			}
			fmt.Printf("%s %-36s  %-10s  %s%s\n", marker, c.ID, c.Status, c.Title, draft)
		}
		return nil
	},
}

var courseCreateCmd = &cobra.Command{
	Use:   "create TITLE",
	Short: "Create a course and make it active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "CreateCourse")
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.CreateCourse(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("creating course: %w", err)
		}
		fmt.Printf("Created course %s\n", c.ID)
		return nil
	},
}

var courseOpenCmd = &cobra.Command{
	Use:   "open ID",
	Short: "Make a course the active course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "OpenCourse")
		if err != nil {
			return err
		}
		defer a.Close()

		c, resumed, err := a.OpenCourse(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if resumed {
			fmt.Printf("Resumed unsaved changes of %s (%s)\n", c.ID, c.Title)
		} else {
			fmt.Printf("Opened %s (%s)\n", c.ID, c.Title)
		}
		return nil
	},
}

var courseShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the module and lesson tree of the active course",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ShowCourse")
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.Course(cmd.Context())
		if err != nil {
			return err
		}
		printCourse(c)
		return nil
	},
}

func printCourse(c *model.Course) {
	fmt.Printf("%s  %s  [%s]\n", c.ID, c.Title, c.Status)
	if c.Description != nil {
		fmt.Printf("  %s\n", *c.Description)
	}
	if c.Difficulty != "" || c.CategoryID != nil || len(c.TagIDs) > 0 {
		category := "-"
		if c.CategoryID != nil {
			category = *c.CategoryID
		}
		fmt.Printf("  difficulty: %s  category: %s  tags: %s\n", c.Difficulty, category, strings.Join(c.TagIDs, ","))
	}

	for _, m := range c.Modules {
		fmt.Printf("%2d. %s  %s%s\n", m.Position, m.ID, m.Title, flag(m.Required, "required"))
		for _, l := range m.Lessons {
			ref := ""
			if l.ContentRef != nil {
				ref = "  -> " + *l.ContentRef
			}
			fmt.Printf("      %2d. %s  %s  (%s, %d min)%s%s%s\n",
				l.Position, l.ID, l.Title, l.Kind, l.DurationMinutes,
				flag(l.Required, "required"), flag(l.Preview, "preview"), ref)
		}
	}
}

func flag(set bool, name string) string {
	if set {
		return "  " + name
	}
	return ""
}

var courseStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the active course has unsaved changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "CourseStatus")
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.Status(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", st.CourseID, st.Title)
		if !st.Dirty {
			fmt.Println("No unsaved changes.")
			return nil
		}
		fmt.Printf("Unsaved changes (%d new entities).\n", st.Placeholders)
		return nil
	},
}

var courseSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Edit the metadata of the active course",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := courseUpdateFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "UpdateCourse")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Edit(cmd.Context(), func(s *editor.Session) error {
			return s.UpdateCourse(u)
		})
	},
}

func courseUpdateFromFlags(cmd *cobra.Command) (editor.CourseUpdate, error) {
	var u editor.CourseUpdate
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
	if f.Changed("status") {
		v, _ := f.GetString("status")
		st := model.CourseStatus(v)
		u.Status = &st
	}
	if f.Changed("difficulty") {
		v, _ := f.GetString("difficulty")
		d := model.Difficulty(v)
		u.Difficulty = &d
	}
	if f.Changed("category") {
		v, _ := f.GetString("category")
		u.CategoryID = &v
	}
	u.ClearCategory, _ = f.GetBool("clear-category")
	if f.Changed("tags") {
		v, _ := f.GetStringSlice("tags")
		u.TagIDs = &v
	}

	if u == (editor.CourseUpdate{}) {
		return u, fmt.Errorf("nothing to change")
	}
	return u, nil
}

var courseDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Drop unsaved changes of the active course",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Discard")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Discard(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Local changes discarded.")
		return nil
	},
}

func init() {
	courseCmd.AddCommand(courseListCmd)
	courseCmd.AddCommand(courseCreateCmd)
	courseCmd.AddCommand(courseOpenCmd)
	courseCmd.AddCommand(courseShowCmd)
	courseCmd.AddCommand(courseStatusCmd)
	courseCmd.AddCommand(courseSetCmd)
	courseCmd.AddCommand(courseDiscardCmd)

	courseSetCmd.Flags().String("title", "", "Course title")
	courseSetCmd.Flags().String("description", "", "Course description")
	courseSetCmd.Flags().Bool("clear-description", false, "Unset the description")
	courseSetCmd.Flags().String("status", "", "draft, published or archived")
	courseSetCmd.Flags().String("difficulty", "", "beginner, intermediate or advanced")
	courseSetCmd.Flags().String("category", "", "Category id")
	courseSetCmd.Flags().Bool("clear-category", false, "Unset the category")
	courseSetCmd.Flags().StringSlice("tags", nil, "Tag ids (replaces the current set)")
}
