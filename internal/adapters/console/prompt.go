package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PromptOption configures a Prompter.
type PromptOption func(*Prompter)

// WithInteractive overrides terminal detection on the input.
func WithInteractive(v bool) PromptOption {
	return func(p *Prompter) { p.interactive = v }
}

// Prompter asks questions on out and reads answers line by line from in.
// When the input is a terminal a bad answer is reported and the question
// repeated; otherwise the bad answer is returned as ErrMalformedInput so
// piped input cannot loop forever.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter creates a Prompter reading from in and writing to out.
func NewPrompter(in io.Reader, out io.Writer, opts ...PromptOption) *Prompter {
	p := &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: IsTerminal(in),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interactive reports whether bad answers are re-asked.
func (p *Prompter) Interactive() bool { return p.interactive }

// Ask prints prompt and returns the trimmed answer once check accepts it.
// A nil check accepts anything.
func (p *Prompter) Ask(prompt string, check func(string) error) (string, error) {
	for {
		if _, err := fmt.Fprint(p.out, prompt); err != nil {
			return "", err
		}
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if check == nil {
			return answer, nil
		}
		checkErr := check(answer)
		if checkErr == nil {
			return answer, nil
		}
		if !p.interactive {
			return "", fmt.Errorf("%w: %q: %w", ErrMalformedInput, answer, checkErr)
		}
		p.Reject(checkErr)
	}
}

// Reject tells the user why an answer was not accepted.
func (p *Prompter) Reject(err error) {
	_, _ = fmt.Fprintf(p.out, "Invalid input: %v. Please try again.\n", err)
}

// AskString asks for a non-empty answer.
func (p *Prompter) AskString(prompt string) (string, error) {
	return p.Ask(prompt, func(s string) error {
		if s == "" {
			return errors.New("answer must not be empty")
		}
		return nil
	})
}

// AskInt asks for an integer accepted by validate (nil accepts any integer).
func (p *Prompter) AskInt(prompt string, validate func(int) error) (int, error) {
	var value int
	_, err := p.Ask(prompt, func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%q is not a whole number", s)
		}
		if validate != nil {
			if err := validate(n); err != nil {
				return err
			}
		}
		value = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

// Range returns a validator accepting integers within [lo, hi].
func Range(lo, hi int) func(int) error {
	return func(n int) error {
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

// AtLeast returns a validator accepting integers >= lo.
func AtLeast(lo int) func(int) error {
	return func(n int) error {
		if n < lo {
			return fmt.Errorf("must be at least %d", lo)
		}
		return nil
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
