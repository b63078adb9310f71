package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	kasm "github.com/EO-DataHub/eodhp-kasm-services/api/services"
	"github.com/EO-DataHub/eodhp-kasm-services/internal/appconfig"
	"github.com/EO-DataHub/eodhp-kasm-services/models"
)

// SessionLister lists the sessions an operator may pick from.
type SessionLister interface {
	GetSessions(ctx context.Context) ([]models.Session, error)
}

// SessionExtender extends a single session.
type SessionExtender interface {
	Extend(ctx context.Context, session models.Session, duration time.Duration) error
}

// ExtendOptions preselect the answers of the interactive prompts. Zero
// values mean the operator is asked.
type ExtendOptions struct {
	KasmID string
	Hours  int
}

// Operator walks an operator through extending one session. Extensions
// longer than MaxHours are refused.
type Operator struct {
	Sessions     SessionLister
	Extender     SessionExtender
	DefaultHours int
	MaxHours     int

	in  *bufio.Reader
	out io.Writer
}

func NewOperator(sessions SessionLister, extender SessionExtender, defaultHours int, in io.Reader, out io.Writer) *Operator {
	return &Operator{
		Sessions:     sessions,
		Extender:     extender,
		DefaultHours: defaultHours,
		MaxHours:     appconfig.DefaultMaxHours,
		in:           bufio.NewReader(in),
		out:          out,
	}
}

// Run lists the sessions, asks which one to extend and for how long, and
// extends it. A refused keepalive is reported to the operator and returned.
func (o *Operator) Run(ctx context.Context, opts ExtendOptions) error {
	sessions, err := o.Sessions.GetSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(o.out, "No active or paused sessions found.")
		return nil
	}

	session, err := o.selectSession(sessions, opts.KasmID)
	if err != nil {
		return err
	}

	hours, err := o.selectHours(opts.Hours)
	if err != nil {
		return err
	}

	err = o.Extender.Extend(ctx, session, time.Duration(hours)*time.Hour)
	if errors.Is(err, kasm.ErrUsageQuotaReached) {
		fmt.Fprintln(o.out, "ERROR: Session not modified, usage quota reached!")
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(o.out, "✅ Session expiration updated successfully!")
	return nil
}

func (o *Operator) selectSession(sessions []models.Session, kasmID string) (models.Session, error) {
	if kasmID != "" {
		for _, s := range sessions {
			if s.KasmID == kasmID {
				return s, nil
			}
		}
		return models.Session{}, fmt.Errorf("session %s not found", kasmID)
	}

	fmt.Fprintln(o.out, "\nAvailable sessions:")
	for i, s := range sessions {
		fmt.Fprintf(o.out, "[%d] %s - %s (state: %s)\n", i+1, s.StartDate, s.Image.FriendlyName, s.OperationalStatus)
	}

	answer, err := o.prompt("\nSelect session to extend (number)[1]: ")
	if err != nil {
		return models.Session{}, err
	}
	if answer == "" {
		return sessions[0], nil
	}

	choice, err := strconv.Atoi(answer)
	if err != nil || choice < 1 || choice > len(sessions) {
		return models.Session{}, fmt.Errorf("invalid session number %q, expected 1-%d", answer, len(sessions))
	}
	return sessions[choice-1], nil
}

func (o *Operator) selectHours(hours int) (int, error) {
	if hours > 0 {
		if hours > o.MaxHours {
			return 0, fmt.Errorf("invalid number of hours %d, expected 1-%d", hours, o.MaxHours)
		}
		return hours, nil
	}

	answer, err := o.prompt(fmt.Sprintf("New expiration time (in hours)[%d]: ", o.DefaultHours))
	if err != nil {
		return 0, err
	}
	if answer == "" {
		return o.DefaultHours, nil
	}

	hours, err = strconv.Atoi(answer)
	if err != nil || hours < 1 || hours > o.MaxHours {
		return 0, fmt.Errorf("invalid number of hours %q, expected 1-%d", answer, o.MaxHours)
	}
	return hours, nil
}

// prompt writes a question and reads one line. End of input counts as an
// empty answer.
func (o *Operator) prompt(question string) (string, error) {
	fmt.Fprint(o.out, question)

	line, err := o.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
