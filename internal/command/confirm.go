package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ErrDeclined is returned when the user does not confirm an overwrite.
var ErrDeclined = errors.New("export cancelled")

var (
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// confirmOverwrite asks a yes/no question and then for the keyword to be
// typed exactly. Both answers come from the same reader.
func confirmOverwrite(input io.Reader, output io.Writer, outputDir, keyword string) (bool, error) {
	reader := bufio.NewReader(input)

	fmt.Fprintln(output, warnStyle.Render(fmt.Sprintf(
		"There is already an export in %s. Part of it may be overwritten if you proceed.", outputDir)))
	confirmed, err := confirmPrompt(reader, output, promptStyle.Render("Continue? [y/N]: "))
	if err != nil || !confirmed {
		return false, err
	}

	prompt := fmt.Sprintf("Type '%s' to continue. Any other input will cancel: ", keyword)
	line, err := readLine(reader, output, promptStyle.Render(prompt))
	if err != nil {
		return false, err
	}
	return line == keyword, nil
}

func confirmPrompt(reader *bufio.Reader, output io.Writer, prompt string) (bool, error) {
	line, err := readLine(reader, output, prompt)
	if err != nil {
		return false, err
	}
	response := strings.ToLower(line)
	return response == "y" || response == "yes", nil
}

func readLine(reader *bufio.Reader, output io.Writer, prompt string) (string, error) {
	fmt.Fprint(output, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
