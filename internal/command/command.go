// Package command is the synchronous command surface over every treasury
// operation: Execute takes a named command with JSON arguments and returns a
// JSON result.
package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/middleware"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/service"
)

// Command is one request to the dispatcher.
type Command struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Services are the operations the dispatcher routes to.
type Services struct {
	Config        *service.ConfigService
	Members       *service.MemberService
	Collections   *service.CollectionService
	Ledger        *service.LedgerService
	Plans         *service.PlanService
	Announcements *service.AnnouncementService
	Alerts        *service.AlertService
	Advice        *service.AdviceService
}

type handler func(ctx context.Context, args json.RawMessage) (any, error)

// Dispatcher routes commands to services.
type Dispatcher struct {
	svc      Services
	validate *validator.Validate
	handlers map[string]handler
}

// New creates a Dispatcher with every command registered.
func New(svc Services) *Dispatcher {
	d := &Dispatcher{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	d.handlers = d.routes()
	return d
}

// Names lists the registered commands in sorted order.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs cmd and returns its JSON-encoded result. Errors keep their
// models kind so callers can branch on models.KindOf.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) (json.RawMessage, error) {
	h, ok := d.handlers[cmd.Name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown command %q", models.ErrValidation, cmd.Name)
	}

	slog.Debug("Executing command", "command", cmd.Name, "member_id", middleware.GetMemberID(ctx))

	result, err := h(ctx, cmd.Args)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s result: %w", cmd.Name, err)
	}
	return out, nil
}

// bind decodes raw into a T, lets fill apply identity defaults and validates
// the result. Empty args decode to the zero value.
func bind[T any](v *validator.Validate, raw json.RawMessage, fill func(*T)) (*T, error) {
	args := new(T)
	if len(bytes.TrimSpace(raw)) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(args); err != nil {
			return nil, fmt.Errorf("%w: invalid arguments: %v", models.ErrValidation, err)
		}
	}
	if fill != nil {
		fill(args)
	}
	if err := v.Struct(args); err != nil {
		return nil, validationError(err)
	}
	return args, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s failed '%s=%s'", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			problems = append(problems, fmt.Sprintf("%s failed '%s'", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(problems, "; "))
}

// defaultToCaller fills an empty member id from the request identity.
func defaultToCaller(ctx context.Context, id *string) {
	if *id == "" {
		*id = middleware.GetMemberID(ctx)
	}
}
