package adapters

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"archaur/internal/ports"
	"archaur/internal/types"
)

// ChoicePromptAdapter asks the operator to disambiguate on stdin/stdout,
// grounded on aurman's utilities.ask_user prompt loop.
type ChoicePromptAdapter struct {
	In  io.Reader
	Out io.Writer
}

func NewChoicePromptAdapter(in io.Reader, out io.Writer) ChoicePromptAdapter {
	return ChoicePromptAdapter{In: in, Out: out}
}

func (a ChoicePromptAdapter) ChooseProvider(dep types.Dependency, providers []types.Package) (types.Package, error) {
	if len(providers) == 0 {
		return types.Package{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no providers to choose from for " + dep.Name)
	}
	if len(providers) == 1 {
		return providers[0], nil
	}
	fmt.Fprintf(a.Out, "Multiple providers found for %s:\n", dep.Name)
	for i, p := range providers {
		fmt.Fprintf(a.Out, "  %d) %s (%s) [%s]\n", i+1, p.Name, p.Version, p.Kind)
	}
	idx, err := a.readIndex(len(providers))
	if err != nil {
		return types.Package{}, err
	}
	return providers[idx], nil
}

func (a ChoicePromptAdapter) ChooseSolution(candidates []types.Candidate) (types.Candidate, error) {
	if len(candidates) == 0 {
		return types.Candidate{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no candidate solutions to choose from")
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	fmt.Fprintln(a.Out, "Multiple valid solutions found:")
	for i, c := range candidates {
		names := make([]string, len(c.Solution.Packages))
		for j, p := range c.Solution.Packages {
			names[j] = p.Name
		}
		fmt.Fprintf(a.Out, "  %d) %s\n", i+1, strings.Join(names, ", "))
	}
	idx, err := a.readIndex(len(candidates))
	if err != nil {
		return types.Candidate{}, err
	}
	return candidates[idx], nil
}

func (a ChoicePromptAdapter) readIndex(count int) (int, error) {
	reader := bufio.NewReader(a.In)
	for {
		fmt.Fprintf(a.Out, "Enter a number (1-%d): ", count)
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read choice").
				WithCause(err)
		}
		value, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && value >= 1 && value <= count {
			return value - 1, nil
		}
		fmt.Fprintln(a.Out, "That was not a valid choice!")
	}
}

var _ ports.ChoicePort = ChoicePromptAdapter{}
