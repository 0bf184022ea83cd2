package payment

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

const cancelWord = "cancel"

// Prompt asks for payment fields on a terminal. Typing "cancel" at any
// prompt, or closing the input, declines the payment.
type Prompt struct {
	in      *bufio.Reader
	out     io.Writer
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// ReadLine reads one trimmed line, returning ctx.Err() if ctx ends first.
// A read abandoned that way is picked up by the next call, so no line is
// lost. It returns io.EOF once the input is closed. Not safe for
// concurrent use.
func (p *Prompt) ReadLine(ctx context.Context) (string, error) {
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
		p.pending = ch
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-p.pending:
		p.pending = nil
		if res.err != nil && !(errors.Is(res.err, io.EOF) && res.line != "") {
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}

func (p *Prompt) Collect(ctx context.Context, q Quote) (RawInput, error) {
	fmt.Fprintf(p.out, "%s: amount due %s\n", q.Attraction, q.Amount.StringFixed(2))

	method, err := p.ask(ctx, "Pay by card or cash? ")
	if err != nil {
		return RawInput{}, err
	}
	in := RawInput{Method: method}
	if !strings.EqualFold(method, "card") {
		return in, nil
	}

	if in.CardNumber, err = p.ask(ctx, "Card number: "); err != nil {
		return RawInput{}, err
	}
	if in.Expiry, err = p.ask(ctx, "Expiry (MM/YY): "); err != nil {
		return RawInput{}, err
	}
	if in.CVV, err = p.ask(ctx, "CVV: "); err != nil {
		return RawInput{}, err
	}
	return in, nil
}

func (p *Prompt) ask(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, label)

	line, err := p.ReadLine(ctx)
	switch {
	case errors.Is(err, io.EOF):
		return "", ErrInputCancelled
	case ctx.Err() != nil:
		return "", err
	case err != nil:
		return "", errors.Wrap(err, "read payment input")
	}
	if strings.EqualFold(line, cancelWord) {
		return "", ErrInputCancelled
	}
	return line, nil
}
