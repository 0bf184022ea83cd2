package payment_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertarktes/park-bookings/internal/payment"
)

var quote = payment.Quote{Attraction: "Looping", Amount: decimal.NewFromInt(20)}

func TestStaticAndDeclined(t *testing.T) {
	in := payment.RawInput{Method: "cash"}
	got, err := payment.Static(in).Collect(context.Background(), quote)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	_, err = payment.Declined().Collect(context.Background(), quote)
	assert.True(t, errors.Is(err, payment.ErrInputCancelled))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = payment.Static(in).Collect(ctx, quote)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPrompt(t *testing.T) {
	t.Run("card", func(t *testing.T) {
		var out bytes.Buffer
		p := payment.NewPrompt(strings.NewReader("card\n1234 5678 9012 3456\n07/26\n123\n"), &out)
		got, err := p.Collect(context.Background(), quote)
		require.NoError(t, err)
		assert.Equal(t, payment.RawInput{Method: "card", CardNumber: "1234 5678 9012 3456", Expiry: "07/26", CVV: "123"}, got)
		assert.Contains(t, out.String(), "amount due 20.00")
	})

	t.Run("cash skips card fields", func(t *testing.T) {
		p := payment.NewPrompt(strings.NewReader("cash\n"), &bytes.Buffer{})
		got, err := p.Collect(context.Background(), quote)
		require.NoError(t, err)
		assert.Equal(t, payment.RawInput{Method: "cash"}, got)
	})

	t.Run("last line without newline", func(t *testing.T) {
		p := payment.NewPrompt(strings.NewReader("cash"), &bytes.Buffer{})
		got, err := p.Collect(context.Background(), quote)
		require.NoError(t, err)
		assert.Equal(t, "cash", got.Method)
	})

	t.Run("cancel word", func(t *testing.T) {
		p := payment.NewPrompt(strings.NewReader("card\nCANCEL\n"), &bytes.Buffer{})
		_, err := p.Collect(context.Background(), quote)
		assert.True(t, errors.Is(err, payment.ErrInputCancelled))
	})

	t.Run("closed input", func(t *testing.T) {
		p := payment.NewPrompt(strings.NewReader("card\n"), &bytes.Buffer{})
		_, err := p.Collect(context.Background(), quote)
		assert.True(t, errors.Is(err, payment.ErrInputCancelled))
	})
}

func TestPrompt_StalledInput(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	p := payment.NewPrompt(pr, &bytes.Buffer{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := p.Collect(ctx, quote)
		done <- err
	}()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	case <-time.After(2 * time.Second):
		t.Fatal("Collect did not return after the deadline")
	}

	// The line typed after the timeout goes to the next reader.
	go func() { _, _ = pw.Write([]byte("cash\n")) }()
	got, err := p.Collect(context.Background(), quote)
	require.NoError(t, err)
	assert.Equal(t, "cash", got.Method)
}

func TestPrompt_ReadLine(t *testing.T) {
	p := payment.NewPrompt(strings.NewReader("  Bob  \n"), &bytes.Buffer{})

	line, err := p.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bob", line)

	_, err = p.ReadLine(context.Background())
	assert.True(t, errors.Is(err, io.EOF))
}
