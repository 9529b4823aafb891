// Package ui holds the interactive prompt wizard and the styled console
// reporter.
package ui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/brianmathews/PPTcrunch/internal/model"
)

// IsInteractive reports whether stdin and stdout are attached to a terminal.
// The wizard only runs in that case; otherwise defaults apply.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

type question struct {
	flag     string // the flag this question answers
	prompt   string
	hint     string
	validate func(string, *model.Request) error
}

// wizardModel walks the user through the encode choices one question at a
// time. An empty answer accepts the default shown in the hint.
type wizardModel struct {
	styles    Styles
	input     textinput.Model
	step      int
	questions []question
	req       model.Request
	errMsg    string
	aborted   bool
}

// RunWizard prompts for the per-run selections, starting from req as the
// defaults, and returns the completed request. Questions whose flag appears
// in skip are not asked; the flag value stands. Cancelling with ctrl+c or
// esc returns an error so the caller can exit without processing anything.
func RunWizard(ctx context.Context, req model.Request, skip map[string]bool) (model.Request, error) {
	var questions []question
	for _, q := range buildQuestions(req) {
		if !skip[q.flag] {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return req, nil
	}

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 16
	ti.Width = 20

	m := wizardModel{
		styles:    defaultStyles(),
		input:     ti,
		req:       req,
		questions: questions,
	}

	prog := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil {
		return req, err
	}
	fm, ok := final.(wizardModel)
	if !ok {
		return req, fmt.Errorf("unexpected wizard state")
	}
	if fm.aborted {
		return req, fmt.Errorf("cancelled")
	}
	return fm.req, nil
}

func buildQuestions(defaults model.Request) []question {
	return []question{
		{
			flag:   "hwaccel",
			prompt: "Use GPU hardware acceleration if available?",
			hint:   "Y/n",
			validate: func(v string, r *model.Request) error {
				switch strings.ToLower(v) {
				case "", "y", "yes":
					r.Hardware = model.HWAuto
				case "n", "no":
					r.Hardware = model.HWOff
				default:
					return fmt.Errorf("answer y or n")
				}
				return nil
			},
		},
		{
			flag:   "codec",
			prompt: "Codec?",
			hint:   "h264/hevc, default " + string(defaults.Codec),
			validate: func(v string, r *model.Request) error {
				switch strings.ToLower(v) {
				case "":
				case "h264":
					r.Codec = model.CodecH264
				case "hevc", "h265":
					r.Codec = model.CodecHEVC
				default:
					return fmt.Errorf("answer h264 or hevc")
				}
				return nil
			},
		},
		{
			flag:   "quality",
			prompt: "Quality? 1=smallest 2=balanced 3=highest",
			hint:   fmt.Sprintf("default %d", defaults.Tier),
			validate: func(v string, r *model.Request) error {
				if v == "" {
					return nil
				}
				n, err := strconv.Atoi(v)
				if err != nil || n < 1 || n > 3 {
					return fmt.Errorf("answer 1, 2, or 3")
				}
				r.Tier = model.QualityTier(n)
				return nil
			},
		},
		{
			flag:   "max-width",
			prompt: "Maximum output width in pixels?",
			hint:   fmt.Sprintf("default %d", defaults.MaxWidth),
			validate: func(v string, r *model.Request) error {
				if v == "" {
					return nil
				}
				n, err := strconv.Atoi(v)
				if err != nil || n < 2 {
					return fmt.Errorf("enter a width of at least 2")
				}
				r.MaxWidth = n
				return nil
			},
		},
	}
}

func (m wizardModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			q := m.questions[m.step]
			if err := q.validate(strings.TrimSpace(m.input.Value()), &m.req); err != nil {
				m.errMsg = err.Error()
				m.input.SetValue("")
				return m, nil
			}
			m.errMsg = ""
			m.input.SetValue("")
			m.step++
			if m.step >= len(m.questions) {
				return m, tea.Quit
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m wizardModel) View() string {
	if m.step >= len(m.questions) {
		return ""
	}
	q := m.questions[m.step]

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("pptcrunch"))
	b.WriteString("  ")
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("question %d/%d • esc: cancel", m.step+1, len(m.questions))))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Prompt.Render(q.prompt))
	b.WriteString(" ")
	b.WriteString(m.styles.Default.Render("[" + q.hint + "]"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(m.styles.Error.Render(m.errMsg))
		b.WriteString("\n")
	}
	return b.String()
}
