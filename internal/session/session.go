// Package session runs the conversation that collects a postcard's texts
// from a user, one template field at a time.
package session

import (
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"

	"github.com/youruser/postcardapp/internal/catalog"
)

// State is where a user is in the conversation.
type State int

const (
	// StateNew: the user has not seen the template previews yet.
	StateNew State = iota
	// StateChoosingTemplate: waiting for a template number.
	StateChoosingTemplate
	// StateCollecting: waiting for the text of Session.Expected.
	StateCollecting
	// StateReady: every field is collected; the postcard can be drawn.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateChoosingTemplate:
		return "choosing_template"
	case StateCollecting:
		return "collecting"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session is one user's conversation.
type Session struct {
	Peer     string            `json:"peer"`
	Name     string            `json:"name,omitempty"`
	State    State             `json:"state"`
	Template int               `json:"template,omitempty"`
	Texts    map[string]string `json:"texts,omitempty"`
	Expected string            `json:"expected,omitempty"`
}

// New starts a conversation for peer.
func New(peer, name string) *Session {
	return &Session{Peer: peer, Name: name, State: StateNew}
}

// Reply is a message to send back to the user.
type Reply struct {
	Text         string `json:"text"`
	ShowPreviews bool   `json:"show_previews,omitempty"`
}

// RenderRequest asks the caller to draw a postcard.
type RenderRequest struct {
	Template int               `json:"template"`
	Texts    map[string]string `json:"texts"`
}

// Outcome is the result of handling one message.
type Outcome struct {
	Replies []Reply
	// Render is set once every field is collected. The caller draws the
	// postcard and then calls Conversation.Finish.
	Render *RenderRequest
}

// Conversation moves sessions through their states. It only reads the
// catalog and is safe for concurrent use on distinct sessions.
type Conversation struct {
	catalog *catalog.Catalog
	policy  *bluemonday.Policy
}

func NewConversation(c *catalog.Catalog) *Conversation {
	return &Conversation{catalog: c, policy: bluemonday.StrictPolicy()}
}

// Handle applies one incoming message to s.
func (c *Conversation) Handle(s *Session, text string) (Outcome, error) {
	switch s.State {
	case StateNew:
		s.State = StateChoosingTemplate
		greeting := "Hello! Pick a postcard template and send me its number."
		if s.Name != "" {
			greeting = fmt.Sprintf("Hello, %s! Pick a postcard template and send me its number.", s.Name)
		}
		return Outcome{Replies: []Reply{{Text: greeting, ShowPreviews: true}}}, nil

	case StateChoosingTemplate:
		tpl, ok := c.catalog.ParseChoice(text)
		if !ok {
			return reply("Please send the template number. It is shown on the picture."), nil
		}
		s.Template = tpl.Index
		s.Texts = map[string]string{}
		return c.askNext(s, tpl)

	case StateCollecting:
		tpl, ok := c.catalog.Template(s.Template)
		if !ok {
			c.Finish(s)
			return Outcome{}, fmt.Errorf("session %s: template %d is no longer in the catalog", s.Peer, s.Template)
		}
		clean := c.Clean(text)
		if clean == "" {
			if st, ok := tpl.Stage(s.Expected); ok {
				return reply(st.Prompt), nil
			}
		}
		if !slices.Contains(tpl.Missing(s.Texts), s.Expected) {
			return Outcome{}, fmt.Errorf("session %s: unexpected field %q", s.Peer, s.Expected)
		}
		s.Texts[s.Expected] = clean
		return c.askNext(s, tpl)

	case StateReady:
		return Outcome{Render: s.renderRequest()}, nil
	}
	return Outcome{}, fmt.Errorf("session %s: unknown state %v", s.Peer, s.State)
}

// Finish resets s after its postcard was delivered. Previews are not shown
// again.
func (c *Conversation) Finish(s *Session) {
	s.State = StateChoosingTemplate
	s.Template = 0
	s.Texts = nil
	s.Expected = ""
}

// Clean strips markup from user text and normalizes it to NFC.
func (c *Conversation) Clean(text string) string {
	text = html.UnescapeString(c.policy.Sanitize(text))
	return strings.TrimSpace(norm.NFC.String(text))
}

func (c *Conversation) askNext(s *Session, tpl *catalog.Template) (Outcome, error) {
	missing := tpl.Missing(s.Texts)
	if len(missing) == 0 {
		s.State = StateReady
		s.Expected = ""
		return Outcome{
			Replies: []Reply{{Text: "That's all! Drawing your postcard, it takes a moment..."}},
			Render:  s.renderRequest(),
		}, nil
	}
	s.State = StateCollecting
	s.Expected = missing[0]
	st, _ := tpl.Stage(s.Expected)
	return reply(st.Prompt), nil
}

func (s *Session) renderRequest() *RenderRequest {
	texts := make(map[string]string, len(s.Texts))
	for k, v := range s.Texts {
		texts[k] = v
	}
	return &RenderRequest{Template: s.Template, Texts: texts}
}

func reply(text string) Outcome {
	return Outcome{Replies: []Reply{{Text: text}}}
}
