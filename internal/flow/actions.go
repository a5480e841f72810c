package flow

import (
	"github.com/pageza/recipegen/internal/types"
)

// Action is one of the named transitions below
type Action interface {
	isAction()
}

// SetPrompt replaces the editable prompt text
type SetPrompt struct{ Text string }

// Submit asks for ideas for Prompt. Blank prompts are ignored.
type Submit struct{ Prompt string }

// Regenerate asks again for the submitted prompt, passing the current
// ideas so different ones come back
type Regenerate struct{}

// IdeasReceived delivers the ideas requested under Gen
type IdeasReceived struct {
	Gen    uint64
	Prompt string
	Ideas  []types.RecipeIdea
}

// IdeasFailed reports the failure of the idea request issued under Gen
type IdeasFailed struct {
	Gen uint64
	Err error
}

// SelectIdea opens the cooking view for Idea
type SelectIdea struct{ Idea types.RecipeIdea }

// DetailsReceived delivers the recipe requested under Gen and cache Key
type DetailsReceived struct {
	Gen    uint64
	Key    string
	Recipe types.FullRecipe
}

// DetailsFailed reports the failure of the detail request issued under Gen
type DetailsFailed struct {
	Gen uint64
	Err error
}

// RetryDetails selects the current idea again after a failure
type RetryDetails struct{}

// StepTo jumps to Index, clamped to the recipe's steps
type StepTo struct{ Index int }

type NextStep struct{}

type PrevStep struct{}

// GoBack leaves the cooking view for the idea list
type GoBack struct{}

// EditPrompt returns to the prompt with the submitted text restored
type EditPrompt struct{}

// SubmitPassword stores the shared password and leaves the login screen
type SubmitPassword struct{ Password string }

// CredentialFailed reports that the password could not be stored
type CredentialFailed struct{ Err error }

func (SetPrompt) isAction()        {}
func (Submit) isAction()           {}
func (Regenerate) isAction()       {}
func (IdeasReceived) isAction()    {}
func (IdeasFailed) isAction()      {}
func (SelectIdea) isAction()       {}
func (DetailsReceived) isAction()  {}
func (DetailsFailed) isAction()    {}
func (RetryDetails) isAction()     {}
func (StepTo) isAction()           {}
func (NextStep) isAction()         {}
func (PrevStep) isAction()         {}
func (GoBack) isAction()           {}
func (EditPrompt) isAction()       {}
func (SubmitPassword) isAction()   {}
func (CredentialFailed) isAction() {}

// Effect is work Reduce asks the Machine to perform. A nil Effect means none.
type Effect interface {
	isEffect()
}

// FetchIdeas calls GenerateIdeas and answers with IdeasReceived or IdeasFailed
type FetchIdeas struct {
	Gen      uint64
	Prompt   string
	Previous []types.RecipeIdea
}

// FetchDetails calls GenerateDetails and answers with DetailsReceived or DetailsFailed
type FetchDetails struct {
	Gen    uint64
	Prompt string
	Idea   types.RecipeIdea
	Key    string
}

// SaveCredential stores the password; failure answers with CredentialFailed
type SaveCredential struct{ Password string }

func (FetchIdeas) isEffect()     {}
func (FetchDetails) isEffect()   {}
func (SaveCredential) isEffect() {}
