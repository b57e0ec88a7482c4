package resolver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gitlab.com/dirk.krummacker/pcrm/internal/model"
)

// CancelToken is the input that cancels a selection.
const CancelToken = "q"

// ParseSelection interprets the answer to a selection prompt over n candidates. It returns the
// 0-based index for a number between 1 and n, ErrCancelled for the cancel token and
// ErrInvalidSelection for anything else.
func ParseSelection(input string, n int) (int, error) {
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, CancelToken) {
		return 0, ErrCancelled
	}
	number, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, input)
	}
	if number < 1 || number > n {
		return 0, fmt.Errorf("%w: %d is not between 1 and %d", ErrInvalidSelection, number, n)
	}
	return number - 1, nil
}

// Selection returns a chooser that applies a choice made in advance, such as a query parameter.
// An empty choice reports the ambiguity instead of choosing.
func Selection(choice string) Chooser {
	return ChooserFunc(func(ctx context.Context, name string, candidates []model.Candidate) (int, error) {
		if strings.TrimSpace(choice) == "" {
			return 0, &AmbiguousError{Name: name, Candidates: candidates}
		}
		return ParseSelection(choice, len(candidates))
	})
}

// Prompt is an interactive chooser. It lists the candidates on Out and reads answers line by line
// from In until it gets a valid number or the cancel token. The end of the input counts as
// cancellation.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer

	// Format renders one candidate line. It defaults to "  N: Name (ID: id)".
	Format func(number int, candidate model.Candidate) string
}

// NewPrompt returns a prompt that reads answers from in and writes the candidate list to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// Choose lists the candidates, numbered from 1, and asks until the answer is valid. Invalid
// answers are reported on out before asking again.
func (p *Prompt) Choose(ctx context.Context, name string, candidates []model.Candidate) (int, error) {
	format := p.Format
	if format == nil {
		format = func(number int, c model.Candidate) string {
			return fmt.Sprintf("  %d: %s (ID: %d)", number, c.FullName(), c.Id)
		}
	}

	fmt.Fprintf(p.out, "\nMultiple contacts found for '%s'. Please choose one:\n", name)
	for i, candidate := range candidates {
		fmt.Fprintln(p.out, format(i+1, candidate))
	}
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fmt.Fprintf(p.out, "Enter the number of the contact (or '%s' to cancel): ", CancelToken)
		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				fmt.Fprintln(p.out)
				return 0, ErrCancelled
			}
			return 0, err
		}
		index, err := ParseSelection(line, len(candidates))
		if err == nil {
			return index, nil
		}
		if err == ErrCancelled {
			fmt.Fprintln(p.out, "Operation cancelled.")
			return 0, ErrCancelled
		}
		fmt.Fprintf(p.out, "Invalid input. Please enter a number between 1 and %d.\n", len(candidates))
	}
}
