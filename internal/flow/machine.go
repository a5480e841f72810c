package flow

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/pageza/recipegen/internal/service"
	"github.com/pageza/recipegen/internal/types"
)

// PasswordSaver stores the shared password for later requests
type PasswordSaver interface {
	SetPassword(password string) error
}

// Machine owns a State and is its only writer. Dispatch reduces under a
// lock; fetches run on their own goroutines and dispatch their result.
type Machine struct {
	mu    sync.Mutex
	state State

	recipes service.IRecipeService
	saver   PasswordSaver
	log     *zap.Logger

	onChange func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// MachineOption configures a Machine
type MachineOption func(*Machine)

// WithLogger sets the machine logger
func WithLogger(log *zap.Logger) MachineOption {
	return func(m *Machine) {
		if log != nil {
			m.log = log
		}
	}
}

// WithOnChange registers fn to be called after every dispatch. fn runs
// outside the lock and may call State.
func WithOnChange(fn func()) MachineOption {
	return func(m *Machine) {
		m.onChange = fn
	}
}

// NewMachine starts from initial
func NewMachine(recipes service.IRecipeService, saver PasswordSaver, initial State, opts ...MachineOption) *Machine {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Machine{
		state:   initial,
		recipes: recipes,
		saver:   saver,
		log:     zap.NewNop(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Dispatch applies a and starts whatever effect it produces
func (m *Machine) Dispatch(a Action) {
	m.mu.Lock()
	next, effect := Reduce(m.state, a)
	m.state = next
	m.mu.Unlock()

	if m.onChange != nil {
		m.onChange()
	}
	if effect != nil {
		m.run(effect)
	}
}

func (m *Machine) run(effect Effect) {
	switch e := effect.(type) {
	case FetchIdeas:
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			ideas, err := m.recipes.GenerateIdeas(m.ctx, e.Prompt, e.Previous)
			if err != nil {
				m.logFailure("idea generation failed", err, zap.Uint64("gen", e.Gen))
				m.Dispatch(IdeasFailed{Gen: e.Gen, Err: err})
				return
			}
			m.Dispatch(IdeasReceived{Gen: e.Gen, Prompt: e.Prompt, Ideas: ideas})
		}()

	case FetchDetails:
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			details, err := m.recipes.GenerateDetails(m.ctx, e.Prompt, e.Idea)
			if err != nil {
				m.logFailure("detail generation failed", err, zap.Uint64("gen", e.Gen), zap.String("idea_id", e.Idea.ID))
				m.Dispatch(DetailsFailed{Gen: e.Gen, Err: err})
				return
			}
			m.Dispatch(DetailsReceived{Gen: e.Gen, Key: e.Key, Recipe: types.NewFullRecipe(e.Idea, details)})
		}()

	case SaveCredential:
		// synchronous so that a fetch dispatched right after sees the credential
		if err := m.saver.SetPassword(e.Password); err != nil {
			m.log.Warn("could not store password", zap.Error(err))
			m.Dispatch(CredentialFailed{Err: err})
		}
	}
}

func (m *Machine) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if types.IsAuthError(err) {
		m.log.Info(msg, fields...)
		return
	}
	m.log.Warn(msg, fields...)
}

// Wait blocks until every started fetch has dispatched its result
func (m *Machine) Wait() {
	m.wg.Wait()
}

// Close cancels fetches still in flight and waits for them
func (m *Machine) Close() {
	m.cancel()
	m.wg.Wait()
}
