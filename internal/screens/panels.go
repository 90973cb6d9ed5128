package screens

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/listing"
)

// defaultOffTopic is shown when the assistant declines without saying why
const defaultOffTopic = "I can only help with questions about vaccines and health."

// Assistant is the AI question-and-answer conversation
type Assistant struct {
	repo domain.AssistantRepository

	mu       sync.RWMutex
	messages []domain.AIMessage
	localID  int64
}

func NewAssistant(d Deps) *Assistant {
	return &Assistant{repo: d.Assistant}
}

// Load replaces the conversation with the server history
func (a *Assistant) Load(ctx context.Context) error {
	msgs, err := a.repo.Messages(ctx)
	if err != nil {
		return err
	}
	slices.SortStableFunc(msgs, func(x, y domain.AIMessage) int {
		return cmp.Or(strings.Compare(x.Timestamp, y.Timestamp), cmp.Compare(x.ID, y.ID))
	})
	a.mu.Lock()
	a.messages = msgs
	a.mu.Unlock()
	return nil
}

// Ask checks that question is in scope and, if so, asks it. An off-topic
// question gets the assistant's refusal as a local reply and is not sent.
func (a *Assistant) Ask(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Invalid("message", "Type a question first")
	}

	check, err := a.repo.CheckQuestion(ctx, question)
	if err != nil {
		return err
	}
	if !check.Allowed {
		reply := check.Message
		if reply == "" {
			reply = defaultOffTopic
		}
		a.mu.Lock()
		a.messages = append(a.messages, a.local(question, true), a.local(reply, false))
		a.mu.Unlock()
		return nil
	}

	ex, err := a.repo.Ask(ctx, question)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.messages = append(a.messages, ex.UserMessage, ex.AIResponse)
	a.mu.Unlock()
	return nil
}

// local builds a message that only exists on this client. Local IDs are
// negative so they never collide with server ones.
func (a *Assistant) local(text string, isUser bool) domain.AIMessage {
	a.localID--
	return domain.AIMessage{ID: a.localID, Text: text, IsUser: isUser}
}

// Messages returns the conversation in order
func (a *Assistant) Messages() []domain.AIMessage {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.messages)
}

// Profile edits the signed-in user's own account
type Profile struct {
	auth domain.AuthRepository

	mu   sync.RWMutex
	user domain.User
}

func NewProfile(d Deps) *Profile {
	return &Profile{auth: d.Auth, user: d.User}
}

// Load refreshes the account from the server
func (p *Profile) Load(ctx context.Context) error {
	u, err := p.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.user = *u
	p.mu.Unlock()
	return nil
}

func (p *Profile) User() domain.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.user
}

// Form returns the editable fields, prefilled
func (p *Profile) Form() Form {
	u := p.User()
	return Form{Title: "Edit profile", Fields: []Field{
		{Key: "first_name", Label: "First name", Value: u.FirstName},
		{Key: "last_name", Label: "Last name", Value: u.LastName},
		{Key: "email", Label: "Email", Value: u.Email},
		{Key: "phone_number", Label: "Phone", Value: u.PhoneNumber},
		{Key: "avatar", Label: "New avatar image path"},
		{Key: "password", Label: "New password (optional)", Secret: true},
		{Key: "confirm", Label: "Confirm password", Secret: true},
	}}
}

// Save validates the form values and updates the account
func (p *Profile) Save(ctx context.Context, v map[string]string) error {
	in := domain.ProfileInput{
		FirstName:   text(v, "first_name"),
		LastName:    text(v, "last_name"),
		Email:       text(v, "email"),
		PhoneNumber: text(v, "phone_number"),
		AvatarPath:  text(v, "avatar"),
		Password:    v["password"],
		Confirm:     v["confirm"],
	}
	if err := listing.Validate(in); err != nil {
		return err
	}
	u, err := p.auth.UpdateProfile(ctx, in)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.user = *u
	p.mu.Unlock()
	return nil
}

// Stats loads the admin dashboard numbers
func Stats(ctx context.Context, d Deps) (*domain.Stats, error) {
	s, err := d.Stats.Stats(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(s.PopularVaccines, func(a, b domain.VaccineCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return s, nil
}
