// Command cast runs the casting engine for one storylet choice against a
// world snapshot on disk and prints who would play each role.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/story-director/internal/config"
	"github.com/jwebster45206/story-director/pkg/casting"
	"github.com/jwebster45206/story-director/pkg/director"
	"github.com/jwebster45206/story-director/pkg/storylet"
	"github.com/jwebster45206/story-director/pkg/world"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true) // pink
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true) // purple
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))            // red
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))            // dark grey
)

type options struct {
	storyletPath string
	worldPath    string
	choiceID     string
	bandsFile    string
	width        int
	weights      casting.Weights // Zero value means casting.DefaultWeights
}

func main() {
	var opts options
	flag.StringVar(&opts.storyletPath, "storylet", "", "storylet file (.json or .yaml)")
	flag.StringVar(&opts.worldPath, "world", "", "world snapshot (.json)")
	flag.StringVar(&opts.choiceID, "choice", "", "choice ID; defaults to the storylet's first choice")
	flag.StringVar(&opts.bandsFile, "bands", "", "optional YAML band table; defaults to CASTING_BANDS_FILE")
	flag.IntVar(&opts.width, "width", 80, "wrap text at this width")
	flag.Parse()

	if opts.storyletPath == "" || opts.worldPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -storylet <file> -world <file> [-choice id] [-bands bands.yaml]\n", os.Args[0])
		os.Exit(2)
	}

	// Same CASTING_* environment as the API, so previews and this tool agree.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
	opts.weights = cfg.Casting.Weights()
	if opts.bandsFile == "" {
		opts.bandsFile = cfg.Casting.BandsFile
	}

	if err := run(os.Stdout, opts); err != nil {
		var resErr *director.ResolutionError
		if errors.As(err, &resErr) {
			os.Exit(3)
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func run(out io.Writer, opts options) error {
	bands := casting.DefaultBands()
	if opts.bandsFile != "" {
		b, err := config.LoadBands(opts.bandsFile)
		if err != nil {
			return err
		}
		bands = b
	}

	s, err := storylet.Load(opts.storyletPath, bands)
	if err != nil {
		return err
	}
	choiceID := opts.choiceID
	if choiceID == "" {
		choiceID = s.Choices[0].ID
	}
	choice, ok := s.Choice(choiceID)
	if !ok {
		return fmt.Errorf("storylet %s has no choice %q", s.ID, choiceID)
	}

	w, err := loadWorld(opts.worldPath)
	if err != nil {
		return err
	}
	view, err := world.NewPoolView(w, bands)
	if err != nil {
		return err
	}

	tb := casting.NewTieBreaker(casting.Key{WorldSeed: w.Seed, StoryletID: s.ID, ChoiceID: choice.ID})
	weights := opts.weights
	if weights == (casting.Weights{}) {
		weights = casting.DefaultWeights()
	}
	engine := casting.NewEngine(casting.NewScorer(bands, weights))

	title := s.Title
	if title == "" {
		title = s.ID
	}
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s / %s", title, choice.ID)))

	cast, err := engine.Assign(s.Roles, view.Candidates(), tb)
	if err != nil {
		resErr := &director.ResolutionError{
			StoryletID:    s.ID,
			ChoiceID:      choice.ID,
			UnfilledRoles: casting.UnfilledRoles(err),
			Err:           err,
		}
		fmt.Fprintln(out, errorStyle.Render(wrap(resErr.Explanation(), opts.width)))
		return resErr
	}

	fmt.Fprintln(out, renderCast(s.Roles, cast, view))

	names := view.Names()
	if s.Prompt != "" {
		fmt.Fprintln(out, promptStyle.Render(wrap(storylet.RenderPrompt(s.Prompt, cast, names), opts.width)))
	}
	if choice.Outcome.Prompt != "" {
		fmt.Fprintln(out, promptStyle.Render(wrap(storylet.RenderPrompt(choice.Outcome.Prompt, cast, names), opts.width)))
	}
	return nil
}

func loadWorld(path string) (*world.World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}
	var w world.World
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to decode world %s: %w", path, err)
	}
	return &w, nil
}

// renderCast draws one row per declared role, including optional roles left empty.
func renderCast(roles []casting.RoleRequirement, cast casting.Cast, view *world.PoolView) string {
	byRole := make(map[string]casting.RoleAssignment, len(cast))
	for _, a := range cast {
		byRole[a.RoleID] = a
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ROLE", "ACTOR", "NAME", "SCORE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, role := range roles {
		a, ok := byRole[role.ID]
		if !ok {
			t.Row(role.ID, "-", "(optional, not cast)", "")
			continue
		}
		t.Row(role.ID, a.ActorID, view.Name(a.ActorID), strconv.FormatFloat(a.Score, 'f', 3, 64))
	}
	return t.String()
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}
