package main

import (
	"fmt"

	"coursekit/internal/editor"
	"coursekit/internal/model"

	"github.com/spf13/cobra"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Edit the lessons of the active course",
}

var lessonAddCmd = &cobra.Command{
	Use:   "add MODULE",
	Short: "Append a lesson to a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := lessonUpdateFromFlags(cmd)

		a, err := newApp(cmd, "AddLesson")
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.AddLesson(cmd.Context(), args[0], u)
		if err != nil {
			return err
		}
		fmt.Printf("Added lesson %s\n", id)
		return nil
	},
}

var lessonEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := lessonUpdateFromFlags(cmd)
		if u == (editor.LessonUpdate{}) {
			return fmt.Errorf("nothing to change")
		}

		a, err := newApp(cmd, "UpdateLesson")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Edit(cmd.Context(), func(s *editor.Session) error {
			ok, err := s.UpdateLesson(args[0], u)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("lesson %s not found", args[0])
			}
			return nil
		})
	},
}

func lessonUpdateFromFlags(cmd *cobra.Command) editor.LessonUpdate {
	var u editor.LessonUpdate
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
	if f.Changed("kind") {
		v, _ := f.GetString("kind")
		k := model.ContentKind(v)
		u.Kind = &k
	}
	if f.Changed("duration") {
		v, _ := f.GetInt("duration")
		u.DurationMinutes = &v
	}
	if f.Changed("required") {
		v, _ := f.GetBool("required")
		u.Required = &v
	}
	if f.Changed("preview") {
		v, _ := f.GetBool("preview")
		u.Preview = &v
	}
	return u
}

var lessonRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove a lesson",
	Long:  "Remove a lesson. Lessons that exist on the server are deleted there immediately.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "RemoveLesson")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Edit(cmd.Context(), func(s *editor.Session) error {
			ok, err := s.RemoveLesson(cmd.Context(), args[0])
			return removed("lesson", args[0], ok, err)
		})
	},
}

var lessonMvCmd = &cobra.Command{
	Use:   "mv MODULE FROM [TO]",
	Short: "Move a lesson before another lesson of its module, or to the end with --end",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		toEnd, _ := cmd.Flags().GetBool("end")
		if toEnd == (len(args) == 3) {
			return fmt.Errorf("give either a target lesson or --end")
		}

		a, err := newApp(cmd, "MoveLesson")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Edit(cmd.Context(), func(s *editor.Session) error {
			var ok bool
			if toEnd {
				ok = s.MoveLessonToEnd(args[0], args[1])
			} else {
				ok = s.MoveLesson(args[0], args[1], args[2])
			}
			if !ok {
				return fmt.Errorf("lesson not moved (unknown id or already in place)")
			}
			return nil
		})
	},
}

var lessonLinkCmd = &cobra.Command{
	Use:   "link ID REF",
	Short: "Link a lesson to external content (content-library:ID, assignment:ID or assessment:ID)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := editor.ParseContentRef(args[1])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "AttachContent")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Edit(cmd.Context(), func(s *editor.Session) error {
			ok, err := s.AttachContent(args[0], ref)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("lesson %s not found", args[0])
			}
			return nil
		})
	},
}

var lessonUnlinkCmd = &cobra.Command{
	Use:   "unlink ID",
	Short: "Remove the content link of a lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "DetachContent")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Edit(cmd.Context(), func(s *editor.Session) error {
			if !s.DetachContent(args[0]) {
				return fmt.Errorf("lesson %s not found", args[0])
			}
			return nil
		})
	},
}

func addLessonFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Lesson title")
	cmd.Flags().String("description", "", "Lesson description")
	cmd.Flags().Bool("clear-description", false, "Unset the description")
	cmd.Flags().String("kind", "", "video, text, document, quiz, assignment, assessment or live_session")
	cmd.Flags().Int("duration", 0, "Duration in minutes")
	cmd.Flags().Bool("required", false, "Lesson is required")
	cmd.Flags().Bool("preview", false, "Lesson is visible before enrollment")
}

func init() {
	lessonCmd.AddCommand(lessonAddCmd)
	lessonCmd.AddCommand(lessonEditCmd)
	lessonCmd.AddCommand(lessonRmCmd)
	lessonCmd.AddCommand(lessonMvCmd)
	lessonCmd.AddCommand(lessonLinkCmd)
	lessonCmd.AddCommand(lessonUnlinkCmd)

	addLessonFlags(lessonAddCmd)
	addLessonFlags(lessonEditCmd)
	lessonMvCmd.Flags().Bool("end", false, "Move to the end of the module")
}
