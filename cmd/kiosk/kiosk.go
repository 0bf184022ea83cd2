package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/robertarktes/park-bookings/internal/booking"
	"github.com/robertarktes/park-bookings/internal/domain"
	"github.com/robertarktes/park-bookings/internal/observability"
	"github.com/robertarktes/park-bookings/internal/payment"
)

var errQuit = errors.New("kiosk closed")

type GuestBooker interface {
	BookForGuest(ctx context.Context, guest domain.Guest, attraction domain.Attraction, date string, src payment.InputSource) (*domain.Reservation, error)
}

type AttractionLister interface {
	ListActive(ctx context.Context) ([]domain.Attraction, error)
}

// Kiosk books attractions for walk-up guests on a terminal. Guest details
// and payment fields are read from the same input.
type Kiosk struct {
	bookings    GuestBooker
	attractions AttractionLister
	out         io.Writer
	prompt      *payment.Prompt
	logger      observability.Logger
}

func NewKiosk(bookings GuestBooker, attractions AttractionLister, in io.Reader, out io.Writer, logger observability.Logger) *Kiosk {
	return &Kiosk{
		bookings:    bookings,
		attractions: attractions,
		out:         out,
		prompt:      payment.NewPrompt(in, out),
		logger:      logger,
	}
}

// Serve runs booking sessions until the input ends, the visitor types
// "quit", or ctx is cancelled.
func (k *Kiosk) Serve(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		err := k.session(ctx)
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			fmt.Fprintln(k.out, "Goodbye.")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (k *Kiosk) session(ctx context.Context) error {
	attractions, err := k.attractions.ListActive(ctx)
	if err != nil {
		return errors.Wrap(err, "list attractions")
	}
	if len(attractions) == 0 {
		fmt.Fprintln(k.out, "No attractions are open for booking.")
		return errQuit
	}

	fmt.Fprintln(k.out, "Attractions:")
	for i, a := range attractions {
		fmt.Fprintf(k.out, "  %d) %s - %s\n", i+1, a.Name, a.BasePrice.StringFixed(2))
	}

	choice, err := k.ask(ctx, "Attraction number (or quit): ")
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(attractions) {
		fmt.Fprintln(k.out, "Unknown attraction.")
		return nil
	}
	attraction := attractions[n-1]

	var guest domain.Guest
	if guest.Name, err = k.ask(ctx, "Your name: "); err != nil {
		return err
	}
	if guest.Email, err = k.ask(ctx, "Your email: "); err != nil {
		return err
	}
	date, err := k.ask(ctx, "Visit date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}

	r, err := k.bookings.BookForGuest(ctx, guest, attraction, date, k.prompt)
	if err != nil {
		var berr *booking.Error
		if !errors.As(err, &berr) {
			return err
		}
		if berr.Category == booking.CategoryPersistence {
			k.logger.WithError(err).WithField("guest_email", guest.Email).Error("kiosk booking needs manual follow-up")
		}
		fmt.Fprintln(k.out, berr.Message())
		return nil
	}

	fmt.Fprintf(k.out, "Booked %s on %s, reservation %s. Amount %s (%s).\n",
		r.Attraction().Name, r.Date.Format(domain.VisitDateLayout), r.ID,
		r.Payment.Amount.StringFixed(2), strings.ToLower(string(r.Payment.Status)))
	return nil
}

func (k *Kiosk) ask(ctx context.Context, label string) (string, error) {
	fmt.Fprint(k.out, label)
	line, err := k.prompt.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(line, "quit") {
		return "", errQuit
	}
	return line, nil
}
