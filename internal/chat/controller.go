// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MillionMedia2/ask-herbie-interface/internal/api"
	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
	"github.com/MillionMedia2/ask-herbie-interface/internal/store"
)

// NoProductsNotice is the transient message shown when the classifier finds
// nothing for an answer. It clears itself after the notice TTL.
const NoProductsNotice = "No products found for this recommendation."

// defaultNoticeTTL is how long the no-products notice stays visible.
const defaultNoticeTTL = 5 * time.Second

// =============================================================================
// COLLABORATORS
// =============================================================================

// Backend is the slice of the API client the engine depends on. *api.Client
// satisfies it; tests substitute fakes.
type Backend interface {
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	CreateConversation(ctx context.Context, params api.CreateConversationParams) (model.Conversation, error)
	UpdateConversation(ctx context.Context, id string, params api.UpdateConversationParams) (model.Conversation, error)
	PinConversation(ctx context.Context, id string, pinned bool) (model.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	ListMessages(ctx context.Context, conversationID string) ([]model.Message, error)
	CreateMessage(ctx context.Context, params api.CreateMessageParams) (model.Message, error)
	ClassifyProducts(ctx context.Context, message string) (api.ClassifyResult, error)
	AskStream(ctx context.Context, params api.AskRequest) (io.ReadCloser, error)
}

// Config wires a Controller.
type Config struct {
	Backend       Backend
	Conversations *store.ConversationStore
	Messages      *store.MessageStore
	Products      *store.ProductStore

	// NoticeTTL overrides the no-products notice lifetime. Zero means the
	// default of five seconds.
	NoticeTTL time.Duration
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the public face of the engine. All operations are safe for
// concurrent use; long operations block their caller (the TUI runs them in
// commands) while mutating the stores as they go.
type Controller struct {
	store.Notifier

	backend       Backend
	conversations *store.ConversationStore
	messages      *store.MessageStore
	products      *store.ProductStore
	noticeTTL     time.Duration

	// generation retires superseded sessions; see package doc.
	generation atomic.Uint64

	mu            sync.Mutex
	authenticated bool
	user          api.UserInfo
	contextIDs    map[string]string
	fetched       map[string]struct{}
	pendingFetch  map[string]struct{}

	loadingConversationID   string
	streamingMessageID      string
	streamingConversationID string

	notice    string
	noticeSeq int
}

// NewController builds the engine around its stores and backend.
func NewController(cfg Config) *Controller {
	ttl := cfg.NoticeTTL
	if ttl == 0 {
		ttl = defaultNoticeTTL
	}
	return &Controller{
		backend:       cfg.Backend,
		conversations: cfg.Conversations,
		messages:      cfg.Messages,
		products:      cfg.Products,
		noticeTTL:     ttl,
		contextIDs:    make(map[string]string),
		fetched:       make(map[string]struct{}),
		pendingFetch:  make(map[string]struct{}),
	}
}

// SetUser records the authenticated account. Zero info with ok=false means
// unauthenticated: conversations stay local from here on.
func (c *Controller) SetUser(user api.UserInfo, ok bool) {
	c.mu.Lock()
	c.user = user
	c.authenticated = ok
	c.mu.Unlock()
	c.Notify()
}

// Authenticated reports the current persistence mode.
func (c *Controller) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// LoadConversations fills the sidebar from the backend. No-op for
// unauthenticated clients, whose list comes from local state alone.
func (c *Controller) LoadConversations(ctx context.Context) error {
	if !c.Authenticated() {
		return nil
	}
	conversations, err := c.backend.ListConversations(ctx)
	if err != nil {
		return err
	}
	c.conversations.SetAll(conversations)
	return nil
}

// =============================================================================
// ASKING
// =============================================================================

// StartConversation creates a fresh conversation around the question, makes
// it active, and streams the answer. Blocks until the exchange settles.
// Backend failures abort softly: the error is returned for the status line
// but no partial state is left behind.
func (c *Controller) StartConversation(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}

	if !c.Authenticated() {
		conv := model.NewEphemeralConversation(question)
		c.conversations.Add(conv)
		c.conversations.SetActive(conv.ID)
		c.messages.Append(model.NewLocalUserMessage(conv.ID, question))
		return c.ask(ctx, conv.ID, question, false)
	}

	c.mu.Lock()
	userID := c.user.ID
	c.mu.Unlock()

	conv, err := c.backend.CreateConversation(ctx, api.CreateConversationParams{
		Title:        model.ConversationTitle(question),
		Participants: model.DefaultParticipants,
		UserID:       &userID,
	})
	if err != nil {
		return err
	}
	c.conversations.Add(conv)
	c.markFetched(conv.ID)
	c.conversations.SetActive(conv.ID)

	userMsg, err := c.backend.CreateMessage(ctx, api.CreateMessageParams{
		ConversationID: conv.ID,
		SenderID:       model.SenderUser,
		Content:        question,
	})
	if err != nil {
		return err
	}
	c.messages.Append(userMsg)

	return c.ask(ctx, conv.ID, question, true)
}

// SendMessage appends a question to the active conversation and streams the
// answer. Without an active conversation it behaves like StartConversation.
func (c *Controller) SendMessage(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	conversationID := c.conversations.ActiveID()
	if conversationID == "" {
		return c.StartConversation(ctx, content)
	}
	return c.askInConversation(ctx, conversationID, content)
}

// RegenerateLastAnswer re-issues the question through a fresh session. The
// previous answer stays in the transcript; this is "ask again", not
// "replace". A still-running session is abandoned by the generation bump.
func (c *Controller) RegenerateLastAnswer(ctx context.Context, lastUserQuestion string) error {
	lastUserQuestion = strings.TrimSpace(lastUserQuestion)
	conversationID := c.conversations.ActiveID()
	if conversationID == "" || lastUserQuestion == "" {
		return nil
	}
	return c.askInConversation(ctx, conversationID, lastUserQuestion)
}

// askInConversation appends the user message in the conversation's
// persistence mode, then streams the answer.
func (c *Controller) askInConversation(ctx context.Context, conversationID, question string) error {
	persist := c.Authenticated() && !model.IsEphemeralConversationID(conversationID)

	if persist {
		userMsg, err := c.backend.CreateMessage(ctx, api.CreateMessageParams{
			ConversationID: conversationID,
			SenderID:       model.SenderUser,
			Content:        question,
		})
		if err != nil {
			return err
		}
		c.messages.Append(userMsg)
	} else {
		c.messages.Append(model.NewLocalUserMessage(conversationID, question))
	}

	return c.ask(ctx, conversationID, question, persist)
}

// ask appends the provisional assistant message and runs a new session for
// it, superseding any session still streaming.
func (c *Controller) ask(ctx context.Context, conversationID, question string, persist bool) error {
	provisional := model.NewProvisionalAssistantMessage(conversationID)
	c.messages.Append(provisional)

	s := &session{
		c:              c,
		generation:     c.generation.Add(1),
		conversationID: conversationID,
		provisionalID:  provisional.ID,
		persist:        persist,
	}

	c.mu.Lock()
	contextID := c.contextIDs[conversationID]
	c.loadingConversationID = conversationID
	c.streamingMessageID = provisional.ID
	c.streamingConversationID = conversationID
	c.mu.Unlock()
	c.Notify()

	s.run(ctx, api.AskRequest{Question: question, ConversationID: contextID})

	if s.state == StateFailed {
		return &api.ActionError{Reason: api.ReasonServer, Message: Apology, StatusCode: 502}
	}
	return nil
}

// =============================================================================
// CONVERSATION MANAGEMENT
// =============================================================================

// SwitchConversation makes a conversation active ("" returns to the home
// screen) and lazily loads its history. History is fetched at most once per
// conversation per process, and never while an answer is streaming into it.
func (c *Controller) SwitchConversation(ctx context.Context, id string) error {
	c.conversations.SetActive(id)
	if id == "" {
		return nil
	}

	if !c.Authenticated() || model.IsEphemeralConversationID(id) {
		return nil
	}

	c.mu.Lock()
	_, alreadyFetched := c.fetched[id]
	_, fetchInFlight := c.pendingFetch[id]
	streamingHere := c.streamingConversationID == id
	if alreadyFetched || fetchInFlight || streamingHere {
		c.mu.Unlock()
		return nil
	}
	c.pendingFetch[id] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pendingFetch, id)
		c.mu.Unlock()
	}()

	messages, err := c.backend.ListMessages(ctx, id)
	if err != nil {
		// Not marked fetched; the next switch retries.
		return err
	}
	c.messages.SetMessages(id, messages)
	c.markFetched(id)
	return nil
}

// NewConversation clears the active selection; the next question starts a
// fresh conversation.
func (c *Controller) NewConversation() {
	c.conversations.SetActive("")
}

// DeleteConversation removes a conversation everywhere: backend (when
// persisted), stores, context-id cache, and any session streaming into it.
func (c *Controller) DeleteConversation(ctx context.Context, id string) error {
	persisted := c.Authenticated() && !model.IsEphemeralConversationID(id)
	if persisted {
		if err := c.backend.DeleteConversation(ctx, id); err != nil {
			return err
		}
	}

	c.mu.Lock()
	delete(c.contextIDs, id)
	delete(c.fetched, id)
	streamingHere := c.streamingConversationID == id
	if streamingHere {
		c.loadingConversationID = ""
		c.streamingMessageID = ""
		c.streamingConversationID = ""
	}
	c.mu.Unlock()

	if streamingHere {
		// The session's provisional message is gone with the cascade;
		// retire it so late events cannot resurrect anything.
		c.generation.Add(1)
	}

	c.conversations.Remove(id)
	c.messages.Clear(id)
	c.products.Clear(id)
	c.Notify()
	return nil
}

// RenameConversation retitles locally first, then mirrors to the backend
// for persisted conversations. A backend failure leaves the local rename.
func (c *Controller) RenameConversation(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	c.conversations.Rename(id, title)

	if c.Authenticated() && !model.IsEphemeralConversationID(id) {
		_, err := c.backend.UpdateConversation(ctx, id, api.UpdateConversationParams{Title: &title})
		return err
	}
	return nil
}

// TogglePin flips the pin locally and mirrors it for persisted
// conversations.
func (c *Controller) TogglePin(ctx context.Context, id string) error {
	pinned, ok := c.conversations.TogglePin(id)
	if !ok {
		return nil
	}
	if c.Authenticated() && !model.IsEphemeralConversationID(id) {
		_, err := c.backend.PinConversation(ctx, id, pinned)
		return err
	}
	return nil
}

// =============================================================================
// PRODUCTS
// =============================================================================

// ShowProducts fetches recommendations for one assistant answer. Stored
// attachments are re-shown without a network call; concurrent requests for
// the same message id collapse into the first one. Zero classifier results
// raise the transient no-products notice instead of an attachment.
func (c *Controller) ShowProducts(ctx context.Context, conversationID, messageID string) error {
	if _, ok := c.products.ForMessage(conversationID, messageID); ok {
		c.products.SetVisibility(conversationID, messageID, true)
		return nil
	}

	msg, ok := c.messages.Get(conversationID, messageID)
	if !ok {
		return nil
	}

	c.mu.Lock()
	if _, pending := c.pendingFetch["product:"+messageID]; pending {
		c.mu.Unlock()
		return nil
	}
	c.pendingFetch["product:"+messageID] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pendingFetch, "product:"+messageID)
		c.mu.Unlock()
		c.Notify()
	}()

	result, err := c.backend.ClassifyProducts(ctx, msg.Content)
	if err != nil {
		return err
	}

	if len(result.Products) == 0 {
		c.raiseNotice(NoProductsNotice)
		return nil
	}

	c.products.Upsert(conversationID, model.ProductAttachment{
		MessageID: messageID,
		Category:  result.Category,
		Count:     result.Count,
		Products:  result.Products,
		IsVisible: true,
	})
	return nil
}

// HideProducts collapses an attachment without discarding its data.
func (c *Controller) HideProducts(conversationID, messageID string) {
	c.products.SetVisibility(conversationID, messageID, false)
}

// ShowStoredProducts re-reveals a collapsed attachment. Returns false when
// no attachment exists for the message.
func (c *Controller) ShowStoredProducts(conversationID, messageID string) bool {
	if _, ok := c.products.ForMessage(conversationID, messageID); !ok {
		return false
	}
	c.products.SetVisibility(conversationID, messageID, true)
	return true
}

// ProductFetchPending reports whether a classify call for the message is in
// flight.
func (c *Controller) ProductFetchPending(messageID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, pending := c.pendingFetch["product:"+messageID]
	return pending
}

// =============================================================================
// UI STATE
// =============================================================================

// IsLoading reports whether the conversation is waiting for its first
// answer token.
func (c *Controller) IsLoading(conversationID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadingConversationID != "" && c.loadingConversationID == conversationID
}

// StreamingMessageID returns the provisional message currently receiving
// tokens, or "".
func (c *Controller) StreamingMessageID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streamingMessageID
}

// StreamingConversationID returns the conversation currently streaming, or
// "".
func (c *Controller) StreamingConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streamingConversationID
}

// Notice returns the current transient notice, or "".
func (c *Controller) Notice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

// raiseNotice shows a transient notice that clears itself after the TTL
// unless a newer notice replaced it.
func (c *Controller) raiseNotice(text string) {
	c.mu.Lock()
	c.noticeSeq++
	seq := c.noticeSeq
	c.notice = text
	c.mu.Unlock()
	c.Notify()

	time.AfterFunc(c.noticeTTL, func() {
		c.mu.Lock()
		if c.noticeSeq == seq {
			c.notice = ""
		}
		c.mu.Unlock()
		c.Notify()
	})
}

// =============================================================================
// SESSION SUPPORT
// =============================================================================

// cacheContextID records the backend conversation-context id the first time
// the server reveals it. Later questions in the conversation forward it.
func (c *Controller) cacheContextID(conversationID, contextID string) {
	c.mu.Lock()
	if _, ok := c.contextIDs[conversationID]; !ok {
		c.contextIDs[conversationID] = contextID
	}
	c.mu.Unlock()
}

// ContextID returns the cached backend context id for a conversation.
func (c *Controller) ContextID(conversationID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.contextIDs[conversationID]
	return id, ok
}

// clearLoading ends the "waiting for first token" phase.
func (c *Controller) clearLoading(conversationID string) {
	c.mu.Lock()
	if c.loadingConversationID == conversationID {
		c.loadingConversationID = ""
	}
	c.mu.Unlock()
	c.Notify()
}

// settle clears streaming flags when the finished session is still the
// current one.
func (c *Controller) settle(s *session) {
	if !s.current() {
		return
	}
	c.mu.Lock()
	if c.streamingMessageID == s.provisionalID {
		c.streamingMessageID = ""
		c.streamingConversationID = ""
	}
	if c.loadingConversationID == s.conversationID {
		c.loadingConversationID = ""
	}
	c.mu.Unlock()
	c.Notify()
}

// markFetched records that a conversation's history is already in the
// message store.
func (c *Controller) markFetched(conversationID string) {
	c.mu.Lock()
	c.fetched[conversationID] = struct{}{}
	c.mu.Unlock()
}
