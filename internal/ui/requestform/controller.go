// Package requestform holds the state of the parcel request form: the draft
// being typed, the in-flight flag and the feedback shown after a submit.
//
// The controller never renders anything. Handlers read a View and feed user
// events back through OnChange, Submit and Cancel.
package requestform

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/rs/zerolog"

	"github.com/99minutos/parcel-portal/internal/core/domain"
	"github.com/99minutos/parcel-portal/internal/core/ports"
)

var (
	ErrSubmitInFlight = errors.New("request form: submit already in flight")
	ErrClosed         = errors.New("request form: closed")
)

// Messages shown under the form.
const (
	MsgSubmitted     = "Your parcel request was submitted."
	MsgRejected      = "Your request was not accepted. Please review the details and try again."
	MsgSubmitFailed  = "Could not submit your request. Please try again."
	MsgMissingFields = "Please fill in every field."
)

// Outcome is the result of one Submit call.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeRejected
	OutcomeFailed
	OutcomeIncomplete
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return "incomplete"
	}
}

// View is a read-only copy of the controller state for rendering.
type View struct {
	Draft      domain.ParcelRequestDraft
	Submitting bool
	Missing    []domain.DraftField
	Error      string
	Notice     string
}

// Controller owns one draft. It is safe for concurrent use; the submitter is
// called without holding the lock.
type Controller struct {
	submitter ports.ParcelRequestSubmitter
	validate  *validator.Validate
	log       zerolog.Logger
	onClose   func()

	mu         sync.Mutex
	draft      domain.ParcelRequestDraft
	submitting bool
	closed     bool
	missing    []domain.DraftField
	errMsg     string
	notice     string
}

// New returns a controller with an empty draft. onClose may be nil.
func New(submitter ports.ParcelRequestSubmitter, log zerolog.Logger, onClose func()) *Controller {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return &Controller{
		submitter: submitter,
		validate:  v,
		log:       log.With().Str("component", "request_form").Logger(),
		onClose:   onClose,
	}
}

// OnChange sets one field of the draft. No validation happens here.
func (c *Controller) OnChange(field domain.DraftField, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Set(field, value)
}

// Replace overwrites the whole draft. It refuses with ErrSubmitInFlight while
// a submit is running so the values of that submit stay in place.
func (c *Controller) Replace(draft domain.ParcelRequestDraft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitInFlight
	}
	c.draft = draft
	return nil
}

// Field returns the current value of field.
func (c *Controller) Field(field domain.DraftField) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Get(field)
}

// Submitting reports whether a submit is in flight.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// View returns a snapshot of the form state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Draft:      c.draft,
		Submitting: c.submitting,
		Missing:    append([]domain.DraftField(nil), c.missing...),
		Error:      c.errMsg,
		Notice:     c.notice,
	}
}

// Submit hands the draft to the submitter. A true result clears the draft,
// false keeps it for correction, an error is logged and reported to the user
// with the draft kept.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return OutcomeFailed, ErrClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return OutcomeFailed, ErrSubmitInFlight
	}
	c.errMsg, c.notice = "", ""
	if missing := c.missingFields(); len(missing) > 0 {
		c.missing = missing
		c.errMsg = MsgMissingFields
		c.mu.Unlock()
		return OutcomeIncomplete, nil
	}
	c.missing = nil
	c.submitting = true
	draft := c.draft
	c.mu.Unlock()

	ok, err := c.submitter.SubmitParcelRequest(ctx, draft)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false

	var outcome Outcome
	switch {
	case err != nil:
		c.log.Error().Err(err).Msg("parcel request submit failed")
		outcome = OutcomeFailed
	case ok:
		outcome = OutcomeAccepted
	default:
		outcome = OutcomeRejected
	}

	if c.closed {
		return outcome, nil
	}
	switch outcome {
	case OutcomeAccepted:
		c.draft = domain.ParcelRequestDraft{}
		c.notice = MsgSubmitted
	case OutcomeRejected:
		c.errMsg = MsgRejected
	case OutcomeFailed:
		c.errMsg = MsgSubmitFailed
	}
	return outcome, nil
}

// Cancel closes the form without submitting. A submit still in flight will
// settle without touching the state.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	onClose := c.onClose
	c.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

// Closed reports whether Cancel was called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// missingFields must be called with c.mu held.
func (c *Controller) missingFields() []domain.DraftField {
	err := c.validate.Struct(c.draft)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	missing := make([]domain.DraftField, 0, len(ve))
	for _, fe := range ve {
		if f, ok := domain.ParseDraftField(fe.Field()); ok {
			missing = append(missing, f)
		}
	}
	return missing
}
