package main

import (
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/Bhoomi3044/optivest/internal/domain"
)

// promptRiskChoice is a test hook for replacing the risk tolerance prompt.
// It returns false when no choice was made (no TTY, or the form was aborted).
var promptRiskChoice = defaultPromptRiskChoice

func defaultPromptRiskChoice(in io.Reader, out io.Writer, current domain.RecommendationChoice) (domain.RecommendationChoice, bool) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return current, false
	}

	options := make([]huh.Option[domain.RecommendationChoice], 0, len(domain.Choices))
	for _, c := range domain.Choices {
		options = append(options, huh.NewOption(c.Title()+": "+c.Description(), c))
	}

	choice := current
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[domain.RecommendationChoice]().
				Title("What level of risk are you comfortable with?").
				Options(options...).
				Value(&choice),
		),
	).WithInput(in).WithOutput(out).Run()

	if err != nil {
		return current, false
	}
	return choice, true
}
