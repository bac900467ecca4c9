package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treerings/pkg/engine"
	"github.com/matzehuels/treerings/pkg/pipeline"
	"github.com/matzehuels/treerings/pkg/store"
	"github.com/matzehuels/treerings/pkg/timeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorMoss)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorAsh)
)

// timelineRows is the number of top-level groups listed per frame.
const timelineRows = 12

// timelineCommand creates the interactive timeline browser.
func (c *CLI) timelineCommand() *cobra.Command {
	var (
		interval time.Duration
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "timeline <timeline.json>",
		Short: "Step through the frames of a timeline interactively",
		Long: `Step through the frames of a timeline interactively.

Shows the largest top-level groups of each frame and marks the ones that
are new since the previous frame.

Keys:
  ←/h  previous frame     →/l  next frame
  g/G  first/last frame   space  play/pause
  w    write the current frame as SVG
  q    quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tl, err := readTimeline(args[0])
			if err != nil {
				return err
			}
			if len(tl.Frames) == 0 {
				return fmt.Errorf("%s has no frames", args[0])
			}
			opts := pipeline.Options{}
			c.mergeConfig(cmd, &opts, pipeline.FormatSVG)
			m := newTimelineModel(tl, interval, outDir, opts)
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", timeline.DefaultInterval, "delay between frames during playback")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory for frames written with w")

	return cmd
}

// =============================================================================
// timelineModel - Interactive frame stepping
// =============================================================================

type tickMsg struct{}

type timelineModel struct {
	tl       *store.Timeline
	stepper  *timeline.Stepper
	interval time.Duration
	playing  bool
	outDir   string
	opts     pipeline.Options
	status   string
}

func newTimelineModel(tl *store.Timeline, interval time.Duration, outDir string, opts pipeline.Options) timelineModel {
	if interval <= 0 {
		interval = timeline.DefaultInterval
	}
	return timelineModel{
		tl:       tl,
		stepper:  timeline.NewStepper(len(tl.Frames)),
		interval: interval,
		outDir:   outDir,
		opts:     opts,
	}
}

func (m timelineModel) Init() tea.Cmd {
	return nil
}

func (m timelineModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m timelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if !m.playing {
			return m, nil
		}
		if !m.stepper.Next() {
			m.playing = false
			return m, nil
		}
		return m, m.tick()

	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.playing = false
			m.stepper.Prev()
		case "right", "l":
			m.playing = false
			m.stepper.Next()
		case "home", "g":
			m.stepper.Seek(0)
		case "end", "G":
			m.stepper.Seek(m.stepper.Len() - 1)
		case " ", "p":
			m.playing = !m.playing
			if m.playing {
				return m, m.tick()
			}
		case "w":
			path, err := m.writeFrame()
			if err != nil {
				m.status = StyleWarning.Render("write failed: " + err.Error())
			} else {
				m.status = StyleSuccess.Render("wrote " + path)
			}
		}
	}
	return m, nil
}

// current returns the layout of the current frame.
func (m timelineModel) current() engine.Layout {
	return m.tl.Frames[m.stepper.Index()]
}

func (m timelineModel) writeFrame() (string, error) {
	l := m.current()
	opts := m.opts
	opts.Formats = []string{pipeline.FormatSVG}
	opts.VizType = pipeline.VizTypeCircles
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return "", err
	}
	out, err := pipeline.RenderFrame(context.Background(), pipeline.Frame{Tag: l.Tag, Layout: l}, opts)
	if err != nil {
		return "", err
	}
	path := filepath.Join(m.outDir, fileName(l.Tag)+".svg")
	return path, os.WriteFile(path, out[pipeline.FormatSVG], 0o644)
}

func (m timelineModel) View() string {
	var b strings.Builder
	l := m.current()
	i, n := m.stepper.Index(), m.stepper.Len()

	b.WriteString(StyleTitle.Render("Timeline"))
	b.WriteString(" " + listDimStyle.Render(m.tl.Source))
	b.WriteString("\n\n")

	ctl := m.stepper.Controls()
	prev, next := "◀ prev", "next ▶"
	if ctl.PrevDisabled {
		prev = listDimStyle.Render(prev)
	}
	if ctl.NextDisabled {
		next = listDimStyle.Render(next)
	}
	play := "▶ play"
	if m.playing {
		play = StyleHighlight.Render("❚❚ pause")
	}
	fmt.Fprintf(&b, "%s  %s  %s   %s %s\n\n",
		prev, listSelectedStyle.Render(l.Tag), next,
		listDimStyle.Render(fmt.Sprintf("[%d/%d]", i+1, n)), play)

	var previous []engine.NodeLayout
	if i > 0 {
		previous = m.tl.Frames[i-1].Nodes
	}
	rows := groupRows(l.Nodes, previous)
	headerStyle := lipgloss.NewStyle().Foreground(colorBark).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorAsh)).
		Headers("Group", "Size", "Radius", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= 0 && row < len(rows) && rows[row][3] != "" {
				return lipgloss.NewStyle().Foreground(colorLeaf)
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s\n", listDimStyle.Render(fmt.Sprintf("%d circles", len(l.Nodes))))
	if l.Truncated > 0 {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("%d circles dropped", l.Truncated)) + "\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString("\n" + listDimStyle.Render("←/→ step  g/G first/last  space play  w write svg  q quit"))
	return b.String()
}

// groupRows lists the largest depth-one groups of nodes, marking those
// absent from previous.
func groupRows(nodes, previous []engine.NodeLayout) [][]string {
	seen := make(map[string]bool, len(previous))
	for _, n := range previous {
		seen[n.Path] = true
	}
	var top []engine.NodeLayout
	for _, n := range nodes {
		if n.Depth == 1 {
			top = append(top, n)
		}
	}
	sort.SliceStable(top, func(a, b int) bool { return top[a].Weight > top[b].Weight })
	if len(top) > timelineRows {
		top = top[:timelineRows]
	}

	rows := make([][]string, len(top))
	for i, n := range top {
		mark := ""
		if len(previous) > 0 && !seen[n.Path] {
			mark = "new"
		}
		name := n.Name
		if !n.Leaf {
			name += "/"
		}
		rows[i] = []string{name, fmt.Sprintf("%.0f KB", n.Weight/1024), fmt.Sprintf("%.1f", n.R), mark}
	}
	return rows
}
