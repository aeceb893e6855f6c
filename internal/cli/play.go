package cli

import (
	"errors"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jwulff/lectern/internal/annotation"
	"github.com/jwulff/lectern/internal/app"
	"github.com/jwulff/lectern/internal/lesson"
	"github.com/jwulff/lectern/internal/monitoring"
	"github.com/jwulff/lectern/internal/mpv"
	"github.com/jwulff/lectern/internal/playback"
	"github.com/jwulff/lectern/internal/watcher"
)

var (
	playVideoID  string
	playMPV      string
	playWatch    bool
	playDuration float64
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [lesson-file]",
		Short: "Play a lesson with its annotations",
		Long: `Play a lesson from a YAML/JSON file or from the library.

Without --mpv the video is simulated: the clock runs but nothing is drawn
behind the annotations. With --mpv lectern drives an mpv started with
--input-ipc-server=<socket>.

Examples:
  lectern play cells.yaml
  lectern play cells.yaml --watch
  lectern play --video 3f2a... --mpv /tmp/mpv.sock`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPlay,
	}

	cmd.Flags().StringVar(&playVideoID, "video", "", "play a lesson from the library by ID")
	cmd.Flags().StringVar(&playMPV, "mpv", "", "mpv IPC socket (default from config)")
	cmd.Flags().BoolVarP(&playWatch, "watch", "w", false, "reload the lesson file when it changes")
	cmd.Flags().Float64Var(&playDuration, "duration", 0, "video length in seconds for the simulated player")

	return cmd
}

// session is everything the player needs, resolved from flags and config.
type session struct {
	title    string
	url      string
	duration float64
	items    []annotation.Annotation
	path     string // lesson file, empty when read from the library
}

func runPlay(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("play needs a terminal")
	}

	s, err := resolveSession(args)
	if err != nil {
		return err
	}

	f, err := tea.LogToFile(cfg.LogPath, "lectern")
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()
	monitoring.SetLogger(log.Printf)

	src, closeSrc, err := openSource(s)
	if err != nil {
		return err
	}
	defer closeSrc()

	model := app.New(app.Options{
		Title:         s.title,
		Source:        src,
		Annotations:   s.items,
		Settings:      cfg.EngineSettings(),
		FrameInterval: cfg.FrameInterval(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if s.path != "" && (playWatch || cfg.Watch.Enabled) {
		w, err := watcher.New(s.path, func(path string) {
			monitoring.Logf("[watcher] reloading %s", path)
			items, err := readLessonItems(path)
			p.Send(app.LessonReloadedMsg{Annotations: items, Err: err})
		}, watcher.WithDebounce(cfg.Watch.Debounce()))
		if err != nil {
			return err
		}
		defer w.Close()
	}

	_, err = p.Run()
	return err
}

func resolveSession(args []string) (*session, error) {
	switch {
	case len(args) == 1 && playVideoID != "":
		return nil, errors.New("give a lesson file or --video, not both")
	case len(args) == 1:
		return sessionFromFile(args[0])
	case playVideoID != "":
		return sessionFromLibrary(playVideoID)
	}
	return nil, errors.New("no lesson: give a lesson file or --video")
}

func sessionFromFile(path string) (*session, error) {
	lessons, err := lesson.Read(path)
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return nil, fmt.Errorf("%s: no lessons", path)
	}
	l := lessons[0]
	if err := l.Validate(); err != nil {
		monitoring.Logf("[lesson] %s: %v", path, err)
	}
	return &session{
		title:    l.Title,
		url:      l.VideoURL,
		duration: float64(l.Duration),
		items:    l.Items(),
		path:     path,
	}, nil
}

func sessionFromLibrary(id string) (*session, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	v, err := store.Video(id)
	if err != nil {
		return nil, err
	}
	items, err := store.AnnotationsForVideo(id)
	if err != nil {
		return nil, err
	}
	return &session{title: v.Title, url: v.URL, duration: v.Duration, items: items}, nil
}

func readLessonItems(path string) ([]annotation.Annotation, error) {
	lessons, err := lesson.Read(path)
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return nil, fmt.Errorf("%s: no lessons", path)
	}
	return lessons[0].Items(), nil
}

// openSource connects to mpv when a socket is configured, otherwise it
// prepares a simulated player. A simulated player that cannot be prepared
// is still returned; the player reports the error on screen.
func openSource(s *session) (app.Source, func(), error) {
	sock := playMPV
	if sock == "" {
		sock = cfg.MPVSocket
	}
	if sock == "" {
		d := s.duration
		if playDuration > 0 {
			d = playDuration
		}
		sim := playback.NewSim(d)
		if err := sim.Prepare(); err != nil {
			monitoring.Logf("[playback] %v", err)
		}
		return sim, func() {}, nil
	}

	client, err := mpv.Connect(sock)
	if err != nil {
		return nil, nil, err
	}
	if s.url != "" {
		if err := client.LoadFile(s.url); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("load %s: %w", s.url, err)
		}
	}
	return mpv.NewPlayer(client), func() { client.Close() }, nil
}
