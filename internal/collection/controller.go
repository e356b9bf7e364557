// Package collection implements the list/filter/edit/delete state machine
// shared by every collection page (notes, projects, homelab services, trail
// gear).
package collection

import (
	"context"
	"errors"
	"sync"

	"github.com/nzaccagnino/folio/internal/logging"
	"github.com/nzaccagnino/folio/internal/model"
	"github.com/nzaccagnino/folio/internal/notify"
)

var (
	ErrValidation     = errors.New("required field is empty")
	ErrSubmitInFlight = errors.New("a submit is already in flight")
	ErrNotAuthorized  = errors.New("sign in required")
)

// Gateway is the remote table behind a controller.
type Gateway[T model.Entity] interface {
	List(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, fields T) (T, error)
	Update(ctx context.Context, id string, fields T) (T, error)
	Delete(ctx context.Context, id string) error
}

// Authorizer reports whether a write-capable identity is present.
type Authorizer interface {
	Authorized() bool
}

type Notifier interface {
	Enqueue(message string, variant notify.Variant) uint64
}

// Messages are the static, already translated strings shown to the user.
type Messages struct {
	LoadError   string
	Required    string
	CreateError string
	UpdateError string
	DeleteError string
	Created     string
	Updated     string
	Deleted     string
	Confirm     string
}

type Phase int

const (
	Loading Phase = iota
	Loaded
	LoadFailed
)

type FormMode int

const (
	FormClosed FormMode = iota
	FormCreate
	FormEdit
)

type Form[T model.Entity] struct {
	Mode       FormMode
	EditingID  string
	Values     T
	Error      string
	Submitting bool
}

func (f Form[T]) Open() bool {
	return f.Mode != FormClosed
}

// State is a consistent copy of everything a view renders.
type State[T model.Entity] struct {
	Phase         Phase
	LoadError     string
	Items         []T
	Visible       []T
	Counts        map[string]int
	Criteria      Criteria
	Form          Form[T]
	PendingDelete string
	Deleting      map[string]bool
	Authorized    bool
}

type Controller[T model.Entity] struct {
	gw       Gateway[T]
	policy   model.Policy[T]
	auth     Authorizer
	notifier Notifier
	msgs     Messages
	log      logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	phase         Phase
	loadErr       string
	loadSeq       int
	items         []T
	criteria      Criteria
	form          Form[T]
	formSeq       int
	pendingDelete string
	deleting      map[string]int
	closed        bool
}

func New[T model.Entity](gw Gateway[T], policy model.Policy[T], auth Authorizer, notifier Notifier, msgs Messages, log logging.Logger) *Controller[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller[T]{
		gw:       gw,
		policy:   policy,
		auth:     auth,
		notifier: notifier,
		msgs:     msgs,
		log:      log.With("table", policy.Table),
		ctx:      ctx,
		cancel:   cancel,
		deleting: make(map[string]int),
	}
}

// opContext is ctx, also cancelled when the controller closes.
func (c *Controller[T]) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Load fetches the whole table. A result arriving after Close, or after a
// newer Load, is dropped.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.loadSeq++
	seq := c.loadSeq
	c.phase = Loading
	c.loadErr = ""
	c.mu.Unlock()

	ctx, cancel := c.opContext(ctx)
	defer cancel()
	rows, err := c.gw.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.loadSeq {
		return nil
	}
	if err != nil {
		c.phase = LoadFailed
		c.loadErr = c.msgs.LoadError
		c.log.Error(ctx, "load failed", "error", err)
		return err
	}
	if rows == nil {
		rows = []T{}
	}
	c.phase = Loaded
	c.items = rows
	return nil
}

func (c *Controller[T]) SetCriteria(cr Criteria) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria = cr
}

// Visible is the loaded sequence narrowed by the current criteria.
func (c *Controller[T]) Visible() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Filter(c.items, c.policy, c.criteria)
}

// Counts is the number of loaded items per filter value.
func (c *Controller[T]) Counts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Counts(c.items, c.policy)
}

// OpenCreate opens the form in create mode with the default values.
func (c *Controller[T]) OpenCreate() error {
	if !c.auth.Authorized() {
		return ErrNotAuthorized
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.formSeq++
	c.form = Form[T]{Mode: FormCreate, Values: c.policy.Empty()}
	return nil
}

// OpenEdit binds the form to v. It does nothing for a signed-out caller.
func (c *Controller[T]) OpenEdit(v T) bool {
	if !c.auth.Authorized() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.formSeq++
	c.form = Form[T]{Mode: FormEdit, EditingID: v.GetID(), Values: v}
	return true
}

func (c *Controller[T]) SetForm(values T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.form.Open() || c.form.Submitting {
		return
	}
	c.form.Values = values
}

func (c *Controller[T]) CloseForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.formSeq++
	c.form = Form[T]{}
}

// Submit validates the form and writes it. Edit replaces the item in place,
// create prepends it. On failure the form stays open with an error.
func (c *Controller[T]) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || !c.form.Open() {
		c.mu.Unlock()
		return nil
	}
	if c.form.Submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	if !c.auth.Authorized() {
		c.mu.Unlock()
		return ErrNotAuthorized
	}
	if !c.policy.HasRequired(c.form.Values) {
		c.form.Error = c.msgs.Required
		c.mu.Unlock()
		return ErrValidation
	}
	c.form.Submitting = true
	c.form.Error = ""
	mode, id, seq := c.form.Mode, c.form.EditingID, c.formSeq
	fields := c.policy.Fields(c.form.Values)
	c.mu.Unlock()

	ctx, cancel := c.opContext(ctx)
	defer cancel()

	var (
		row T
		err error
	)
	if mode == FormEdit {
		row, err = c.gw.Update(ctx, id, fields)
	} else {
		row, err = c.gw.Insert(ctx, fields)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return err
	}
	sameForm := seq == c.formSeq
	if sameForm {
		c.form.Submitting = false
	}

	if err != nil {
		if sameForm {
			if mode == FormEdit {
				c.form.Error = c.msgs.UpdateError
			} else {
				c.form.Error = c.msgs.CreateError
			}
		}
		c.mu.Unlock()
		c.log.Error(ctx, "save failed", "id", id, "error", err)
		return err
	}

	msg := c.msgs.Created
	if mode == FormEdit {
		msg = c.msgs.Updated
		for i := range c.items {
			if c.items[i].GetID() == id {
				c.items[i] = row
				break
			}
		}
	} else {
		c.items = append([]T{row}, c.items...)
	}
	if sameForm {
		c.formSeq++
		c.form = Form[T]{}
	}
	c.mu.Unlock()

	c.notifier.Enqueue(msg, notify.Success)
	return nil
}

// AskDelete records id as awaiting confirmation and returns the prompt.
func (c *Controller[T]) AskDelete(id string) (string, error) {
	if !c.auth.Authorized() {
		return "", ErrNotAuthorized
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = id
	return c.msgs.Confirm, nil
}

// TakePendingDelete clears the prompt and returns the id it was asked for,
// or "" when nothing is pending. The caller runs Delete itself.
func (c *Controller[T]) TakePendingDelete() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.pendingDelete
	c.pendingDelete = ""
	return id
}

// CancelDelete drops the pending prompt.
func (c *Controller[T]) CancelDelete() {
	c.TakePendingDelete()
}

// ConfirmDelete answers the pending prompt. Declining never reaches the gateway.
func (c *Controller[T]) ConfirmDelete(ctx context.Context, ok bool) error {
	id := c.TakePendingDelete()
	if !ok || id == "" {
		return nil
	}
	return c.Delete(ctx, id)
}

// Delete removes an already confirmed id. Deletes of different ids may run
// concurrently.
func (c *Controller[T]) Delete(ctx context.Context, id string) error {
	if !c.auth.Authorized() {
		return ErrNotAuthorized
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.deleting[id]++
	c.mu.Unlock()

	ctx, cancel := c.opContext(ctx)
	defer cancel()
	err := c.gw.Delete(ctx, id)

	c.mu.Lock()
	if c.deleting[id]--; c.deleting[id] <= 0 {
		delete(c.deleting, id)
	}
	if c.closed {
		c.mu.Unlock()
		return err
	}
	if err != nil {
		c.mu.Unlock()
		c.log.Error(ctx, "delete failed", "id", id, "error", err)
		c.notifier.Enqueue(c.msgs.DeleteError, notify.Error)
		return err
	}
	for i := range c.items {
		if c.items[i].GetID() == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.notifier.Enqueue(c.msgs.Deleted, notify.Success)
	return nil
}

func (c *Controller[T]) Snapshot() State[T] {
	authorized := c.auth.Authorized()

	c.mu.Lock()
	defer c.mu.Unlock()

	deleting := make(map[string]bool, len(c.deleting))
	for id := range c.deleting {
		deleting[id] = true
	}
	return State[T]{
		Phase:         c.phase,
		LoadError:     c.loadErr,
		Items:         append([]T(nil), c.items...),
		Visible:       Filter(c.items, c.policy, c.criteria),
		Counts:        Counts(c.items, c.policy),
		Criteria:      c.criteria,
		Form:          c.form,
		PendingDelete: c.pendingDelete,
		Deleting:      deleting,
		Authorized:    authorized,
	}
}

func (c *Controller[T]) Policy() model.Policy[T] {
	return c.policy
}

// Close cancels in-flight calls and drops their late results.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}
