// Package repl implements the Read-Eval-Print Loop for the LOLCODE
// evaluation core.
//
// The REPL provides an interactive interface for users to enter LOLCODE,
// have it evaluated, and see the results immediately. It uses the Charm
// libraries (Bubbletea, Bubbles, and Lipgloss) to create a modern,
// terminal interface with syntax highlighting and command history.
//
// The main entry point is the Start function.
package repl

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dr8co/lolcode/binding"
	"github.com/dr8co/lolcode/eval"
	"github.com/dr8co/lolcode/lexer"
	"github.com/dr8co/lolcode/parser"
	"github.com/dr8co/lolcode/token"
	"github.com/dr8co/lolcode/value"
)

const (
	// Prompt is the default prompt for the REPL
	Prompt = ">> "

	// ContPrompt is the continuation prompt used in multiline input mode within the REPL.
	ContPrompt = ".. "
)

// Options contains configuration options for the REPL
type Options struct {
	NoColor bool // Disable syntax highlighting and colored output
	Debug   bool // Enable debug mode with more verbose output
}

// Start initializes and runs the REPL on the process's own terminal; its two
// arguments are accepted but not used.
func Start(_ interface{ Read([]byte) (int, error) }, _ interface{ Write([]byte) (int, error) }) {
	p := tea.NewProgram(initialModel(Options{}))
	if _, err := p.Run(); err != nil {
		fmt.Println("Error running program:", err)
	}
}

// Styling
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	// Error styles
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87"))

	parseErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF5F87")).
				Bold(true)

	runtimeErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF8700")).
				Bold(true)

	errorTipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAF00"))

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	// Syntax highlighting styles
	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF79C6")).
			Bold(true)

	identifierStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F8F8F2"))

	literalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	punctuationStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#BD93F9"))

	stringStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))
)

// ErrorType represents the type of error that occurred
type ErrorType int

const (
	// NoError indicates that no error occurred.
	NoError ErrorType = iota
	// ParseError indicates an error during parsing.
	ParseError
	// RuntimeError indicates an error during evaluation.
	RuntimeError
)

// Custom messages for async evaluation
type evalResultMsg struct {
	output    string
	isError   bool
	errorType ErrorType
	elapsed   time.Duration
}

// The model represents the state of the application
type model struct {
	textInput       textinput.Model
	history         []historyEntry
	root            *value.Scope
	evaluator       *eval.Evaluator
	evaluating      bool
	currentInput    string
	multilineBuffer string // Buffer for multiline input
	isMultiline     bool   // Flag to indicate if we're in multiline mode
	spinner         spinner.Model
	options         Options
}

// applyStyle applies a lipgloss style to a string, respecting the NoColor option
func (m model) applyStyle(style lipgloss.Style, text string) string {
	if m.options.NoColor {
		return text
	}
	return style.Render(text)
}

// historyEntry represents a single entry in the REPL history
type historyEntry struct {
	input          string
	output         string
	isError        bool
	errorType      ErrorType
	evaluationTime time.Duration
}

// initialModel creates a new model with default values
func initialModel(options Options) model {
	ti := textinput.New()
	ti.Placeholder = "Enter LOLCODE"
	ti.Focus()
	ti.Width = 80
	ti.Prompt = promptStyle.Render(Prompt)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	root := value.New(nil)
	ev := eval.New(&bytes.Buffer{}, strings.NewReader(""))
	ev.Importer = binding.Load

	return model{
		textInput:  ti,
		history:    []historyEntry{},
		root:       root,
		evaluator:  ev,
		evaluating: false,
		spinner:    s,
		options:    options,
	}
}

// Init is the first function that will be called
func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// tokenize buffers every token the lexer produces over src, stopping after EOF.
func tokenize(src string) []token.Token {
	l := lexer.New(src)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}

// blockDepth reports the net nesting of unterminated multi-line constructs
// (HAI/KTHXBAI, O RLY?/OIC, WTF?/OIC, HOW IZ/IF U SAY SO, O HAI IM/KTHX,
// IM IN YR/IM OUTTA YR) over tokens. A positive result means the buffered
// input has an open block and the REPL should keep reading lines.
func blockDepth(tokens []token.Token) int {
	depth := 0
	for i, tok := range tokens {
		switch tok.Type {
		case token.HAI, token.HOW, token.WTF:
			depth++
		case token.KTHXBAI, token.OIC, token.IF, token.KTHX:
			depth--
		case token.O_KW:
			// "O HAI" is already counted by its HAI token above.
			if i+1 < len(tokens) && tokens[i+1].Type == token.RLY {
				depth++
			}
		case token.IM:
			if i+1 < len(tokens) {
				switch tokens[i+1].Type {
				case token.IN:
					depth++
				case token.OUTTA:
					depth--
				}
			}
		}
	}
	return depth
}

// hasOpenBlocks reports whether input has an unterminated multi-line
// construct, the REPL's cue to keep buffering instead of evaluating.
func hasOpenBlocks(input string) bool {
	return blockDepth(tokenize(input)) > 0
}

// evalCmd evaluates LOLCODE asynchronously against the REPL's persistent
// root scope.
func evalCmd(input string, root *value.Scope, ev *eval.Evaluator, debug bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		l := lexer.New(input)
		p := parser.New(l)
		program := p.ParseProgram()

		var output string
		isError := false
		errorType := NoError

		if len(p.Errors()) != 0 {
			isError = true
			errorType = ParseError
			output = formatParseErrors(p.Errors())
		} else {
			buf := &bytes.Buffer{}
			ev.Stdout = buf
			_, err := ev.RunProgram(root, program)
			if err != nil {
				isError = true
				errorType = RuntimeError
				output = formatRuntimeError(err.Error())
			} else {
				output = buf.String()
				if output == "" {
					impVar := root.ImpVar()
					output = impVar.Inspect()
					value.Drop(impVar)
				}
			}
		}

		elapsed := time.Since(start)
		if debug {
			fmt.Printf("DEBUG: total execution time: %v\n", elapsed)
		}

		return evalResultMsg{
			output:    output,
			isError:   isError,
			errorType: errorType,
			elapsed:   elapsed,
		}
	}
}

// formatError formats error messages.
func (m model) formatError(errorStyle *lipgloss.Style, entry *historyEntry, s *strings.Builder) {
	parts := strings.Split(entry.output, "\nTips:")
	if len(parts) > 1 {
		if m.options.NoColor {
			s.WriteString(parts[0])
			s.WriteString("\n")
			s.WriteString("Tips:" + parts[1])
		} else {
			s.WriteString(errorStyle.Render(parts[0]))
			s.WriteString("\n")
			s.WriteString(errorTipStyle.Render("Tips:" + parts[1]))
		}
	} else {
		if m.options.NoColor {
			s.WriteString(entry.output)
		} else {
			s.WriteString(errorStyle.Render(entry.output))
		}
	}
}

// Update handles all the updates to our model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.evaluating {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case evalResultMsg:
		m.evaluating = false
		m.history = append(m.history, historyEntry{
			input:          m.currentInput,
			output:         msg.output,
			isError:        msg.isError,
			errorType:      msg.errorType,
			evaluationTime: msg.elapsed,
		})
		m.currentInput = ""
		return m, nil

	case tea.KeyMsg:
		if m.evaluating && msg.Type != tea.KeyCtrlC {
			return m, m.spinner.Tick
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			input := m.textInput.Value()
			if input == "" {
				if m.isMultiline {
					if m.multilineBuffer == "" {
						m.isMultiline = false
						return m, nil
					}
					m.evaluating = true
					m.currentInput = m.multilineBuffer
					m.textInput.SetValue("")
					m.isMultiline = false

					buffer := m.multilineBuffer
					m.multilineBuffer = ""
					return m, evalCmd(buffer, m.root, m.evaluator, m.options.Debug)
				}
				return m, nil
			}

			if m.isMultiline {
				m.multilineBuffer += "\n" + input
				m.textInput.SetValue("")

				if !hasOpenBlocks(m.multilineBuffer) {
					m.evaluating = true
					m.currentInput = m.multilineBuffer
					m.isMultiline = false

					buffer := m.multilineBuffer
					m.multilineBuffer = ""
					return m, evalCmd(buffer, m.root, m.evaluator, m.options.Debug)
				}
				return m, nil
			}

			if hasOpenBlocks(input) {
				m.isMultiline = true
				m.multilineBuffer = input
				m.textInput.SetValue("")
				return m, nil
			}

			m.evaluating = true
			m.currentInput = input
			m.textInput.SetValue("")
			return m, evalCmd(input, m.root, m.evaluator, m.options.Debug)
		}
	}

	if !m.evaluating {
		m.textInput, cmd = m.textInput.Update(msg)
	}
	if m.evaluating {
		return m, m.spinner.Tick
	}
	return m, cmd
}

// View renders the current UI
func (m model) View() string {
	var s strings.Builder

	s.WriteString(m.applyStyle(titleStyle, " LOLCODE REPL "))
	s.WriteString("\n\n")

	for _, entry := range m.history {
		lines := strings.Split(entry.input, "\n")
		for i, line := range lines {
			if i == 0 {
				s.WriteString(m.applyStyle(promptStyle, Prompt))
			} else {
				s.WriteString(m.applyStyle(promptStyle, ContPrompt))
			}
			s.WriteString(m.highlightCode(line))
			s.WriteString("\n")
		}

		if entry.isError {
			switch entry.errorType {
			case ParseError:
				m.formatError(&parseErrorStyle, &entry, &s)
			case RuntimeError:
				m.formatError(&runtimeErrorStyle, &entry, &s)
			default:
				if m.options.NoColor {
					s.WriteString(entry.output)
				} else {
					s.WriteString(errorStyle.Render(entry.output))
				}
			}
		} else {
			if m.options.NoColor {
				s.WriteString(entry.output)
			} else {
				s.WriteString(resultStyle.Render(entry.output))
			}
		}

		if entry.evaluationTime > 10*time.Millisecond {
			timeStr := fmt.Sprintf(" (%.2fs)", entry.evaluationTime.Seconds())
			if m.options.NoColor {
				s.WriteString(timeStr)
			} else {
				s.WriteString(historyStyle.Render(timeStr))
			}
		}

		s.WriteString("\n\n")
	}

	if m.evaluating {
		if m.options.NoColor {
			s.WriteString(Prompt)
		} else {
			s.WriteString(promptStyle.Render(Prompt))
		}
		s.WriteString(m.highlightCode(m.currentInput))
		s.WriteString("\n")
		s.WriteString(m.spinner.View())
		s.WriteString(" Evaluating...")
		s.WriteString("\n\n")
	}

	if m.isMultiline && !m.evaluating {
		if m.options.NoColor {
			s.WriteString("Current multiline input:\n")
		} else {
			s.WriteString(historyStyle.Render("Current multiline input:\n"))
		}
		s.WriteString(m.highlightCode(m.multilineBuffer))
		s.WriteString("\n")
	}

	if !m.evaluating {
		if m.isMultiline {
			if m.options.NoColor {
				m.textInput.Prompt = ContPrompt
			} else {
				m.textInput.Prompt = promptStyle.Render(ContPrompt)
			}
		} else {
			if m.options.NoColor {
				m.textInput.Prompt = Prompt
			} else {
				m.textInput.Prompt = promptStyle.Render(Prompt)
			}
		}
		s.WriteString(m.textInput.View())
		s.WriteString("\n")
	}

	helpText := "\nPress Esc or Ctrl+C/D to exit"
	if m.isMultiline {
		helpText += " | Multiline mode: Enter empty line to evaluate or continue typing"
	} else {
		helpText += " | Multiline input supported for HAI/O RLY?/WTF?/HOW IZ/O HAI IM/IM IN YR blocks"
	}
	if m.options.NoColor {
		s.WriteString(helpText)
	} else {
		s.WriteString(historyStyle.Render(helpText))
	}

	return s.String()
}

// formatParseErrors formats parser errors into a string with improved readability
func formatParseErrors(errors []string) string {
	var s strings.Builder
	s.WriteString("Parser Errors:\n")
	for i, msg := range errors {
		s.WriteString(fmt.Sprintf("  %d. %s\n", i+1, msg))
	}
	s.WriteString("\nTips:\n")
	s.WriteString("  • Check that every O RLY?/WTF?/HOW IZ/IM IN YR/O HAI IM block is closed\n")
	s.WriteString("  • Verify keyword phrases are spelled and ordered correctly\n")
	return s.String()
}

// formatRuntimeError formats a runtime error into a string with improved readability
func formatRuntimeError(errorMsg string) string {
	var s strings.Builder
	s.WriteString("Runtime Error:\n")
	s.WriteString("  " + errorMsg + "\n")
	s.WriteString("\nTips:\n")

	switch {
	case strings.Contains(errorMsg, "not found") || strings.Contains(errorMsg, "unbound"):
		s.WriteString("  • Check if the variable is declared (I HAS A ...) before use\n")
		s.WriteString("  • Verify the variable name is spelled correctly\n")
	case strings.Contains(errorMsg, "argument"):
		s.WriteString("  • Check the function call has the correct number of YR arguments\n")
	case strings.Contains(errorMsg, "cast") || strings.Contains(errorMsg, "type"):
		s.WriteString("  • Ensure operands are of compatible types, or MAEK one explicitly\n")
	default:
		s.WriteString("  • Review the program logic around the reported line\n")
	}
	return s.String()
}

// tokenCategory classifies a token for syntax highlighting.
type tokenCategory int

const (
	catKeyword tokenCategory = iota
	catIdentifier
	catString
	catLiteral
	catPunctuation
)

func categorize(t token.Token) tokenCategory {
	switch t.Type {
	case token.IDENT:
		return catIdentifier
	case token.YARN:
		return catString
	case token.NUMBR, token.NUMBAR, token.WIN, token.FAIL:
		return catLiteral
	case token.QUESTION, token.BANG, token.COMMA:
		return catPunctuation
	default:
		return catKeyword
	}
}

// highlightCode applies syntax highlighting to a line (or buffer) of
// LOLCODE, indenting nested blocks by their running [blockDepth].
func (m model) highlightCode(code string) string {
	tokens := tokenize(code)
	var s strings.Builder

	depth := 0
	atLineStart := true
	for i, tok := range tokens {
		if tok.Type == token.EOF {
			continue
		}
		if tok.Type == token.NEWLINE {
			s.WriteString("\n")
			atLineStart = true
			continue
		}

		closesLine := tok.Type == token.OIC || tok.Type == token.KTHX || tok.Type == token.KTHXBAI ||
			(tok.Type == token.IF && i+1 < len(tokens))
		if atLineStart {
			indent := depth
			if closesLine && indent > 0 {
				indent--
			}
			for range indent {
				s.WriteString("  ")
			}
			atLineStart = false
		} else {
			s.WriteString(" ")
		}

		text := tok.Literal
		if tok.Type == token.YARN {
			text = "\"" + text + "\""
		}

		switch categorize(tok) {
		case catKeyword:
			s.WriteString(m.applyStyle(keywordStyle, text))
		case catIdentifier:
			s.WriteString(m.applyStyle(identifierStyle, text))
		case catString:
			s.WriteString(m.applyStyle(stringStyle, text))
		case catLiteral:
			s.WriteString(m.applyStyle(literalStyle, text))
		case catPunctuation:
			s.WriteString(m.applyStyle(punctuationStyle, text))
		}

		depth += blockDepth(tokens[i : i+1])
		if i+1 < len(tokens) {
			depth += tokenPairDelta(tokens, i)
		}
	}

	return s.String()
}

// tokenPairDelta accounts for the two-token openers/closers ("O RLY",
// "O HAI", "IM IN", "IM OUTTA") that [blockDepth] resolves by lookahead,
// since highlightCode walks tokens one at a time.
func tokenPairDelta(tokens []token.Token, i int) int {
	if tokens[i].Type != token.O_KW && tokens[i].Type != token.IM {
		return 0
	}
	// The second token is counted again on its own step; leave its share out.
	return blockDepth(tokens[i:i+2]) - blockDepth(tokens[i+1:i+2])
}
