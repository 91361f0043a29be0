// Package terminal provides interactive prompts used for user consent
// and project browsing.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(syscall.Stdin))
}

// Prompter reads answers from in and writes questions to out.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter over arbitrary streams.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

var defaultPrompter *Prompter

// Default returns the Prompter bound to stdin and stdout.
func Default() *Prompter {
	if defaultPrompter == nil {
		defaultPrompter = NewPrompter(os.Stdin, os.Stdout)
	}
	return defaultPrompter
}

func (p *Prompter) readLine() (string, error) {
	input, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// PromptChoice displays a numbered menu and returns the selected index (0-based).
// The prompt includes a default option that is selected if the user presses Enter.
func (p *Prompter) PromptChoice(question string, options []string, defaultIndex int) (int, error) {
	fmt.Fprintln(p.out, question)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, opt)
	}

	for {
		fmt.Fprintf(p.out, "Selection [%d]: ", defaultIndex+1)
		input, err := p.readLine()
		if err != nil {
			return 0, err
		}

		// Default selection
		if input == "" {
			return defaultIndex, nil
		}

		num, err := strconv.Atoi(input)
		if err != nil || num < 1 || num > len(options) {
			fmt.Fprintf(p.out, "Please enter a number between 1 and %d\n", len(options))
			continue
		}

		return num - 1, nil
	}
}

// PromptString asks a free-form question. Returns the default if the
// user presses Enter without input.
func (p *Prompter) PromptString(question, defaultVal string) (string, error) {
	if defaultVal != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	input, err := p.readLine()
	if err != nil {
		return "", err
	}
	if input == "" {
		return defaultVal, nil
	}
	return input, nil
}

// PromptConfirm asks a yes/no question.
func (p *Prompter) PromptConfirm(question string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.out, "%s [%s]: ", question, hint)
		input, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(input) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer y or n")
	}
}
