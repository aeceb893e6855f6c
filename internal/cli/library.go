package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/jwulff/lectern/internal/annotation"
	"github.com/jwulff/lectern/internal/db"
	"github.com/jwulff/lectern/internal/lesson"
	"github.com/jwulff/lectern/internal/ui"
)

var (
	importStrict bool
	exportOutput string
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <lesson-file>...",
		Short: "Store lesson files in the library",
		Long: `Read one or more lesson files (YAML or JSON, a single lesson or a list)
and store them in the library. Files are parsed concurrently. A lesson
whose id or task_id matches a stored video replaces it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			return importLessons(cmd.Context(), store, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().BoolVar(&importStrict, "strict", false, "refuse lessons that fail validation")
	return cmd
}

func importLessons(ctx context.Context, store *db.Store, paths []string, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := lesson.ReadAll(ctx, paths)
	if err != nil {
		return err
	}

	for i, lessons := range results {
		for _, l := range lessons {
			if err := l.Validate(); err != nil {
				if importStrict {
					return fmt.Errorf("%s: %w", paths[i], err)
				}
				fmt.Fprintf(errOut, "warning: %s: %v\n", paths[i], err)
			}

			items := l.Items()
			id, err := store.SaveVideo(db.Video{
				ID:       l.Key(),
				Title:    l.Title,
				Subject:  l.Subject,
				Author:   l.Author,
				URL:      l.VideoURL,
				Duration: float64(l.Duration),
			})
			if err != nil {
				return err
			}
			if err := store.ReplaceAnnotations(id, items); err != nil {
				return err
			}
			fmt.Fprintf(out, "imported %s %q (%d annotations)\n", id, l.Title, len(items))
		}
	}
	return nil
}

func newVideosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "videos",
		Short: "List lessons in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			videos, err := store.Videos()
			if err != nil {
				return err
			}
			writeVideoTable(cmd.OutOrStdout(), videos)
			return nil
		},
	}
}

// writeVideoTable prints one row per video with padded columns.
func writeVideoTable(w io.Writer, videos []db.VideoSummary) {
	if len(videos) == 0 {
		fmt.Fprintln(w, ui.DimStyle.Render("No lessons yet. Add one with: lectern import <file>"))
		return
	}

	headers := []string{"ID", "TITLE", "SUBJECT", "LENGTH", "NOTES", "ADDED"}
	rows := make([][]string, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, []string{
			v.ID,
			v.Title,
			v.Subject,
			annotation.FormatTime(v.Duration),
			fmt.Sprint(v.AnnotationCount),
			v.CreatedAt.Local().Format(time.DateOnly),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		var s string
		for i, c := range cells {
			if i > 0 {
				s += "  "
			}
			s += runewidth.FillRight(c, widths[i])
		}
		return style.Render(s)
	}
	fmt.Fprintln(w, line(headers, ui.TitleStyle))
	for _, r := range rows {
		fmt.Fprintln(w, line(r, lipgloss.NewStyle()))
	}
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <video-id>",
		Short: "Write a stored lesson as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			l, err := exportLesson(store, args[0])
			if err != nil {
				return err
			}
			if exportOutput != "" {
				return lesson.Write(l, exportOutput)
			}
			data, err := lesson.Marshal(l)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func exportLesson(store *db.Store, id string) (*lesson.Lesson, error) {
	v, err := store.Video(id)
	if err != nil {
		return nil, err
	}
	items, err := store.AnnotationsForVideo(id)
	if err != nil {
		return nil, err
	}
	return &lesson.Lesson{
		ID:          lesson.ID(v.ID),
		Title:       v.Title,
		Subject:     v.Subject,
		Author:      v.Author,
		VideoURL:    v.URL,
		Duration:    lesson.Seconds(v.Duration),
		Annotations: lesson.FromItems(items),
	}, nil
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <video-id>",
		Short: "Remove a lesson and its annotations from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteVideo(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

