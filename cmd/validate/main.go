package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/story-director/internal/config"
	"github.com/jwebster45206/story-director/pkg/casting"
	"github.com/jwebster45206/story-director/pkg/storylet"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)  // green
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))            // yellow
)

func main() {
	bandsFile := flag.String("bands", "", "optional YAML band table")
	width := flag.Int("width", 100, "wrap messages at this width")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-bands bands.yaml] <storylet.json|yaml>...\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	bands := casting.DefaultBands()
	if *bandsFile != "" {
		b, err := config.LoadBands(*bandsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid band table: %v\n", err)
			os.Exit(1)
		}
		bands = b
	}

	if failed := run(os.Stdout, flag.Args(), bands, *width); failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d storylet files failed validation\n", failed, flag.NArg())
		os.Exit(1)
	}
}

// run validates every file and returns how many failed.
func run(out io.Writer, files []string, bands casting.BandTable, width int) int {
	failed := 0
	for _, filename := range files {
		v := &StoryletValidator{bands: bands}
		if err := v.validateFile(filename); err != nil {
			failed++
			fmt.Fprintf(out, "%s %s\n%s\n", failStyle.Render("FAIL"), filename, wrap(err.Error(), width))
			continue
		}
		fmt.Fprintf(out, "%s %s\n", okStyle.Render("OK"), filename)
		for _, w := range v.warnings {
			fmt.Fprintln(out, warnStyle.Render(wrap("  warning: "+w, width)))
		}
	}
	return failed
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}

type StoryletValidator struct {
	bands    casting.BandTable
	errors   []string
	warnings []string
}

func (v *StoryletValidator) validateFile(filename string) error {
	baseName := filepath.Base(filename)
	if !storylet.IsStoryletFile(baseName) {
		return fmt.Errorf("storylet file must have a .json, .yaml or .yml extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	if !isValidStoryletFilename(nameWithoutExt) {
		return fmt.Errorf("storylet filename '%s' must be lowercase snake_case (e.g., tavern_brawl.json, not tavern-brawl.json or TavernBrawl.json)", baseName)
	}

	// Load decodes strictly and checks the role configuration.
	s, err := storylet.Load(filename, v.bands)
	if err != nil {
		return err
	}

	v.errors = nil
	v.validateStorylet(s)
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	v.warnings = s.Lint()
	return nil
}

func (v *StoryletValidator) validateStorylet(s *storylet.Storylet) {
	v.validateIDFormat("storylet ID", s.ID)

	for _, role := range s.Roles {
		for stat := range role.StatThresholds {
			if !isValidVariableName(strings.ToLower(stat)) {
				v.addError(fmt.Sprintf("role %s has invalid stat name '%s' - should be snake_case", role.ID, stat))
			}
		}
	}

	for _, choice := range s.Choices {
		v.validateIDFormat("choice ID", choice.ID)
		for varName := range choice.Outcome.SetVars {
			if !isValidVariableName(varName) {
				v.addError(fmt.Sprintf("choice %s sets invalid variable name '%s' - should be lowercase snake_case", choice.ID, varName))
			}
		}
	}
}

func (v *StoryletValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *StoryletValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidVariableName(name string) bool {
	return validIDRegex.MatchString(name)
}

func isValidStoryletFilename(name string) bool {
	// Allow 'x.' prefix for experimental storylets
	name = strings.TrimPrefix(name, "x.")
	return validIDRegex.MatchString(name)
}
