package commands

import (
	"errors"
	"io"
	"net"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/sirupsen/logrus"

	"podlocalsync/internal/config"
)

// Prompter asks the user for values the flags did not supply.
type Prompter interface {
	Input(message, defaultValue string) (string, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// Env carries the collaborators shared by all commands.
type Env struct {
	Prompter Prompter
	Out      io.Writer
	Logger   *logrus.Logger
	// Listen opens the serve socket. Defaults to net.Listen.
	Listen func(network, address string) (net.Listener, error)

	root     string
	settings config.ServeSettings
	noInput  bool
}

// DefaultEnv wires the interactive terminal prompter and stdout.
func DefaultEnv() *Env {
	return &Env{
		Prompter: SurveyPrompter{},
		Out:      os.Stdout,
		Listen:   net.Listen,
	}
}

// SurveyPrompter prompts on the controlling terminal.
type SurveyPrompter struct{}

// Input asks for a line of text.
func (SurveyPrompter) Input(message, defaultValue string) (string, error) {
	var answer string
	prompt := &survey.Input{Message: message, Default: defaultValue}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", promptError(err)
	}
	return answer, nil
}

// Select asks the user to pick one of options.
func (SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	var answer string
	prompt := &survey.Select{Message: message, Options: options, Default: defaultValue}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", promptError(err)
	}
	return answer, nil
}

var errInterrupted = errors.New("interrupted")

func promptError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errInterrupted
	}
	return err
}
