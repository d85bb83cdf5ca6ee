// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MillionMedia2/ask-herbie-interface/internal/api"
	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
	"github.com/MillionMedia2/ask-herbie-interface/internal/store"
)

// =============================================================================
// FAKES
// =============================================================================

// scriptedStream delivers SSE frames pushed through a channel, so tests can
// interleave two live streams deterministically. Closing the channel ends
// the stream.
type scriptedStream struct {
	frames chan string
	buf    []byte
}

func newScriptedStream() *scriptedStream {
	return &scriptedStream{frames: make(chan string, 16)}
}

func (s *scriptedStream) push(frame string)    { s.frames <- frame }
func (s *scriptedStream) pushContent(f string) { s.push("data: {\"type\":\"content\",\"content\":" + jsonString(f) + "}\n\n") }
func (s *scriptedStream) pushDone()            { s.push("data: [DONE]\n\n") }
func (s *scriptedStream) end()                 { close(s.frames) }

func jsonString(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func (s *scriptedStream) Read(p []byte) (int, error) {
	if len(s.buf) == 0 {
		frame, ok := <-s.frames
		if !ok {
			return 0, io.EOF
		}
		s.buf = []byte(frame)
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

func (s *scriptedStream) Close() error { return nil }

// brokenBody yields its frames, then fails with err instead of closing.
type brokenBody struct {
	r   io.Reader
	err error
}

func (b *brokenBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err == io.EOF {
		return n, b.err
	}
	return n, err
}

func (b *brokenBody) Close() error { return nil }

func sseBodyBroken(err error, frames ...string) io.ReadCloser {
	return &brokenBody{r: strings.NewReader(strings.Join(frames, "")), err: err}
}

// sseBody builds a fully buffered stream from frames.
func sseBody(frames ...string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(strings.Join(frames, "")))
}

func contentFrame(f string) string {
	return "data: {\"type\":\"content\",\"content\":" + jsonString(f) + "}\n\n"
}

func contextFrame(id string) string {
	return `data: {"type":"conversationId","conversationId":"` + id + `"}` + "\n\n"
}

const doneFrame = "data: [DONE]\n\n"

// fakeBackend records every call and serves queued stream bodies in order.
type fakeBackend struct {
	mu sync.Mutex

	streams []io.ReadCloser

	askRequests             []api.AskRequest
	createConversationCalls []api.CreateConversationParams
	createMessageCalls      []api.CreateMessageParams
	listMessagesCalls       []string
	deleteCalls             []string
	classifyCalls           []string

	nextID int

	failAssistantCreate bool
	listMessagesResult  []model.Message
	classify            func(message string) (api.ClassifyResult, error)
}

func (f *fakeBackend) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeBackend) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	return nil, nil
}

func (f *fakeBackend) CreateConversation(ctx context.Context, params api.CreateConversationParams) (model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createConversationCalls = append(f.createConversationCalls, params)
	return model.Conversation{
		ID:           f.id("conv"),
		Title:        params.Title,
		Participants: params.Participants,
		UpdatedAt:    time.Now(),
	}, nil
}

func (f *fakeBackend) UpdateConversation(ctx context.Context, id string, params api.UpdateConversationParams) (model.Conversation, error) {
	return model.Conversation{ID: id}, nil
}

func (f *fakeBackend) PinConversation(ctx context.Context, id string, pinned bool) (model.Conversation, error) {
	return model.Conversation{ID: id, IsPinned: pinned}, nil
}

func (f *fakeBackend) DeleteConversation(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	return nil
}

func (f *fakeBackend) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listMessagesCalls = append(f.listMessagesCalls, conversationID)
	return f.listMessagesResult, nil
}

func (f *fakeBackend) CreateMessage(ctx context.Context, params api.CreateMessageParams) (model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createMessageCalls = append(f.createMessageCalls, params)
	if f.failAssistantCreate && params.SenderID == model.SenderAssistant {
		return model.Message{}, &api.ActionError{Reason: api.ReasonServer, Message: "persist failed", StatusCode: 500}
	}
	return model.Message{
		ID:             f.id("srv"),
		ConversationID: params.ConversationID,
		SenderID:       params.SenderID,
		Content:        params.Content,
		CreatedAt:      time.Now(),
	}, nil
}

func (f *fakeBackend) ClassifyProducts(ctx context.Context, message string) (api.ClassifyResult, error) {
	f.mu.Lock()
	f.classifyCalls = append(f.classifyCalls, message)
	fn := f.classify
	f.mu.Unlock()
	if fn != nil {
		return fn(message)
	}
	return api.ClassifyResult{}, nil
}

func (f *fakeBackend) AskStream(ctx context.Context, params api.AskRequest) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.askRequests = append(f.askRequests, params)
	if len(f.streams) == 0 {
		return nil, &api.ActionError{Reason: api.ReasonRequest, Message: "no stream queued", StatusCode: 500}
	}
	body := f.streams[0]
	f.streams = f.streams[1:]
	return body, nil
}

func (f *fakeBackend) queue(body io.ReadCloser) {
	f.mu.Lock()
	f.streams = append(f.streams, body)
	f.mu.Unlock()
}

func (f *fakeBackend) assistantCreates() []api.CreateMessageParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []api.CreateMessageParams
	for _, call := range f.createMessageCalls {
		if call.SenderID == model.SenderAssistant {
			out = append(out, call)
		}
	}
	return out
}

type fixture struct {
	backend       *fakeBackend
	conversations *store.ConversationStore
	messages      *store.MessageStore
	products      *store.ProductStore
	controller    *Controller
}

func newFixture(authenticated bool) *fixture {
	f := &fixture{
		backend:       &fakeBackend{},
		conversations: store.NewConversationStore(),
		messages:      store.NewMessageStore(),
		products:      store.NewProductStore(),
	}
	f.controller = NewController(Config{
		Backend:       f.backend,
		Conversations: f.conversations,
		Messages:      f.messages,
		Products:      f.products,
		NoticeTTL:     20 * time.Millisecond,
	})
	if authenticated {
		f.controller.SetUser(api.UserInfo{ID: 7, Username: "herbfan"}, true)
	}
	return f
}

// =============================================================================
// STREAMING FLOWS
// =============================================================================

func TestStartConversation_UnauthenticatedStaysLocal(t *testing.T) {
	f := newFixture(false)
	f.backend.queue(sseBody(contentFrame("Chamomile "), contentFrame("helps."), doneFrame))

	err := f.controller.StartConversation(context.Background(), "What helps with sleep?")
	require.NoError(t, err)

	list := f.conversations.List()
	require.Len(t, list, 1)
	assert.True(t, list[0].IsEphemeral())
	assert.Equal(t, list[0].ID, f.conversations.ActiveID())

	timeline := f.messages.List(list[0].ID)
	require.Len(t, timeline, 2)
	assert.True(t, strings.HasPrefix(timeline[0].ID, "local-user-"))
	assert.Equal(t, "What helps with sleep?", timeline[0].Content)
	assert.Equal(t, "Chamomile helps.", timeline[1].Content)
	assert.True(t, timeline[1].IsProvisional())

	// No conversation or message CRUD may have happened.
	assert.Empty(t, f.backend.createConversationCalls)
	assert.Empty(t, f.backend.createMessageCalls)
}

func TestStartConversation_AuthenticatedPersistsAndReplaces(t *testing.T) {
	f := newFixture(true)
	f.backend.queue(sseBody(
		contextFrame("resp_ctx_1"),
		contentFrame("Ginger "),
		contentFrame("root "),
		contentFrame("tea."),
		doneFrame,
	))

	err := f.controller.StartConversation(context.Background(), "What helps with headaches?")
	require.NoError(t, err)

	require.Len(t, f.backend.createConversationCalls, 1)
	assert.Equal(t, "What helps with headaches?", f.backend.createConversationCalls[0].Title)

	list := f.conversations.List()
	require.Len(t, list, 1)

	timeline := f.messages.List(list[0].ID)
	require.Len(t, timeline, 2)
	for _, msg := range timeline {
		assert.False(t, msg.IsProvisional(), "no provisional ids may survive finalization: %s", msg.ID)
	}
	assert.Equal(t, "Ginger root tea.", timeline[1].Content)

	creates := f.backend.assistantCreates()
	require.Len(t, creates, 1)
	assert.Equal(t, "Ginger root tea.", creates[0].Content)

	ctxID, ok := f.controller.ContextID(list[0].ID)
	require.True(t, ok)
	assert.Equal(t, "resp_ctx_1", ctxID)
}

func TestSendMessage_ForwardsCachedContextID(t *testing.T) {
	f := newFixture(true)
	f.backend.queue(sseBody(contextFrame("resp_ctx_9"), contentFrame("hi"), doneFrame))
	f.backend.queue(sseBody(contentFrame("again"), doneFrame))

	require.NoError(t, f.controller.StartConversation(context.Background(), "first question"))
	require.NoError(t, f.controller.SendMessage(context.Background(), "second question"))

	require.Len(t, f.backend.askRequests, 2)
	assert.Empty(t, f.backend.askRequests[0].ConversationID)
	assert.Equal(t, "resp_ctx_9", f.backend.askRequests[1].ConversationID)
}

func TestStreamError_ProducesApology(t *testing.T) {
	f := newFixture(false)
	f.backend.queue(sseBody(
		contentFrame("partial "),
		"data: {\"error\":\"upstream timeout\"}\n\n",
	))

	err := f.controller.StartConversation(context.Background(), "anything")
	require.Error(t, err)

	timeline := f.messages.List(f.conversations.ActiveID())
	require.Len(t, timeline, 2)
	assert.Equal(t, Apology, timeline[1].Content)

	assert.False(t, f.controller.IsLoading(f.conversations.ActiveID()))
	assert.Empty(t, f.controller.StreamingMessageID())
}

// A connection dropped mid-answer must not be mistaken for completion:
// the truncated content is never persisted and the apology replaces it.
func TestTransportFailure_NeverPersistsTruncatedAnswer(t *testing.T) {
	f := newFixture(true)
	f.backend.queue(sseBodyBroken(
		errors.New("read tcp: connection reset by peer"),
		contentFrame("Chamomile is "),
	))

	err := f.controller.StartConversation(context.Background(), "What helps with sleep?")
	require.Error(t, err)

	timeline := f.messages.List(f.conversations.ActiveID())
	require.Len(t, timeline, 2)
	assert.Equal(t, Apology, timeline[1].Content)

	assert.Empty(t, f.backend.assistantCreates(),
		"truncated answers must not reach the backend")
	assert.False(t, f.controller.IsLoading(f.conversations.ActiveID()))
	assert.Empty(t, f.controller.StreamingMessageID())
}

func TestPersistenceFailure_ProducesApology(t *testing.T) {
	f := newFixture(true)
	f.backend.failAssistantCreate = true
	f.backend.queue(sseBody(contentFrame("an answer"), doneFrame))

	err := f.controller.StartConversation(context.Background(), "a question")
	require.Error(t, err)

	timeline := f.messages.List(f.conversations.ActiveID())
	require.Len(t, timeline, 2)
	assert.Equal(t, Apology, timeline[1].Content)
}

func TestLoadingClearsOnFirstToken(t *testing.T) {
	f := newFixture(false)
	body := newScriptedStream()
	f.backend.queue(body)

	done := make(chan error, 1)
	go func() { done <- f.controller.StartConversation(context.Background(), "slow question") }()

	var convID string
	require.Eventually(t, func() bool {
		convID = f.conversations.ActiveID()
		return convID != "" && f.controller.IsLoading(convID)
	}, time.Second, time.Millisecond)

	body.pushContent("first")
	require.Eventually(t, func() bool {
		return !f.controller.IsLoading(convID) && f.controller.StreamingMessageID() != ""
	}, time.Second, time.Millisecond)

	body.pushDone()
	body.end()
	require.NoError(t, <-done)
	assert.Empty(t, f.controller.StreamingMessageID())
}

// =============================================================================
// SESSION ABANDONMENT
// =============================================================================

func TestRegenerate_AbandonsPriorSession(t *testing.T) {
	f := newFixture(false)

	oldStream := newScriptedStream()
	f.backend.queue(oldStream)

	firstDone := make(chan error, 1)
	go func() { firstDone <- f.controller.StartConversation(context.Background(), "the question") }()

	var convID string
	require.Eventually(t, func() bool {
		convID = f.conversations.ActiveID()
		return convID != "" && len(f.messages.List(convID)) == 2
	}, time.Second, time.Millisecond)

	oldStream.pushContent("old fragment ")
	require.Eventually(t, func() bool {
		return strings.Contains(f.messages.List(convID)[1].Content, "old fragment")
	}, time.Second, time.Millisecond)

	// Supersede the live session.
	f.backend.queue(sseBody(contentFrame("fresh answer"), doneFrame))
	require.NoError(t, f.controller.RegenerateLastAnswer(context.Background(), "the question"))

	// Late output from the abandoned stream must change nothing.
	oldStream.pushContent("LATE ")
	oldStream.pushDone()
	oldStream.end()
	<-firstDone

	timeline := f.messages.List(convID)
	require.Len(t, timeline, 4)
	assert.Equal(t, "old fragment ", timeline[1].Content, "abandoned session wrote after supersession")
	assert.Equal(t, "fresh answer", timeline[3].Content)
	assert.Empty(t, f.controller.StreamingMessageID())
}

func TestRegenerate_AppendsAlongsidePreviousAnswer(t *testing.T) {
	f := newFixture(false)
	f.backend.queue(sseBody(contentFrame("first answer"), doneFrame))
	f.backend.queue(sseBody(contentFrame("second answer"), doneFrame))

	require.NoError(t, f.controller.StartConversation(context.Background(), "the question"))
	convID := f.conversations.ActiveID()
	require.NoError(t, f.controller.RegenerateLastAnswer(context.Background(), "the question"))

	timeline := f.messages.List(convID)
	require.Len(t, timeline, 4)
	assert.Equal(t, "first answer", timeline[1].Content)
	assert.Equal(t, "the question", timeline[2].Content)
	assert.Equal(t, "second answer", timeline[3].Content)
}

// =============================================================================
// CONVERSATION MANAGEMENT
// =============================================================================

func TestSwitchConversation_FetchesHistoryOnce(t *testing.T) {
	f := newFixture(true)
	f.conversations.Add(model.Conversation{ID: "conv-hist", Title: "old chat"})
	f.backend.listMessagesResult = []model.Message{
		{ID: "srv-1", ConversationID: "conv-hist", SenderID: model.SenderUser, Content: "hello"},
	}

	require.NoError(t, f.controller.SwitchConversation(context.Background(), "conv-hist"))
	require.NoError(t, f.controller.SwitchConversation(context.Background(), ""))
	require.NoError(t, f.controller.SwitchConversation(context.Background(), "conv-hist"))

	assert.Len(t, f.backend.listMessagesCalls, 1)
	assert.Len(t, f.messages.List("conv-hist"), 1)
}

func TestSwitchConversation_EphemeralNeverFetches(t *testing.T) {
	f := newFixture(true)
	id := model.NewEphemeralConversationID()
	f.conversations.Add(model.Conversation{ID: id})

	require.NoError(t, f.controller.SwitchConversation(context.Background(), id))
	assert.Empty(t, f.backend.listMessagesCalls)
}

func TestDeleteConversation_Cascades(t *testing.T) {
	f := newFixture(true)
	f.backend.queue(sseBody(contextFrame("resp_1"), contentFrame("answer"), doneFrame))
	require.NoError(t, f.controller.StartConversation(context.Background(), "a question"))
	convID := f.conversations.ActiveID()

	f.products.Upsert(convID, model.ProductAttachment{MessageID: "m", IsVisible: true})

	require.NoError(t, f.controller.DeleteConversation(context.Background(), convID))

	assert.Equal(t, []string{convID}, f.backend.deleteCalls)
	assert.Zero(t, f.conversations.Len())
	assert.Empty(t, f.conversations.ActiveID())
	assert.Empty(t, f.messages.List(convID))
	assert.Empty(t, f.products.List(convID))
	_, ok := f.controller.ContextID(convID)
	assert.False(t, ok)
}

// =============================================================================
// PRODUCTS
// =============================================================================

func TestShowProducts_IndependentPerMessage(t *testing.T) {
	f := newFixture(false)
	convID := "conv-p"
	f.messages.Append(model.Message{ID: "a1", ConversationID: convID, SenderID: model.SenderAssistant, Content: "try chamomile"})
	f.messages.Append(model.Message{ID: "a2", ConversationID: convID, SenderID: model.SenderAssistant, Content: "try turmeric"})
	f.backend.classify = func(message string) (api.ClassifyResult, error) {
		return api.ClassifyResult{Category: message, Count: 1, Products: []model.Product{{ID: 1, Name: "x"}}}, nil
	}

	require.NoError(t, f.controller.ShowProducts(context.Background(), convID, "a1"))
	require.NoError(t, f.controller.ShowProducts(context.Background(), convID, "a2"))

	require.Len(t, f.products.List(convID), 2)

	f.controller.HideProducts(convID, "a1")
	att1, _ := f.products.ForMessage(convID, "a1")
	att2, _ := f.products.ForMessage(convID, "a2")
	assert.False(t, att1.IsVisible)
	assert.True(t, att2.IsVisible)
}

func TestShowProducts_SerializedPerMessage(t *testing.T) {
	f := newFixture(false)
	convID := "conv-p"
	f.messages.Append(model.Message{ID: "a1", ConversationID: convID, SenderID: model.SenderAssistant, Content: "try chamomile"})

	release := make(chan struct{})
	f.backend.classify = func(message string) (api.ClassifyResult, error) {
		<-release
		return api.ClassifyResult{Count: 1, Products: []model.Product{{ID: 1}}}, nil
	}

	done := make(chan struct{})
	go func() {
		f.controller.ShowProducts(context.Background(), convID, "a1")
		close(done)
	}()

	require.Eventually(t, func() bool {
		return f.controller.ProductFetchPending("a1")
	}, time.Second, time.Millisecond)

	// Second request for the same message while the first is in flight.
	require.NoError(t, f.controller.ShowProducts(context.Background(), convID, "a1"))

	close(release)
	<-done

	f.backend.mu.Lock()
	calls := len(f.backend.classifyCalls)
	f.backend.mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestShowProducts_ZeroResultsRaisesTransientNotice(t *testing.T) {
	f := newFixture(false)
	convID := "conv-p"
	f.messages.Append(model.Message{ID: "a1", ConversationID: convID, SenderID: model.SenderAssistant, Content: "nothing matches"})
	f.backend.classify = func(string) (api.ClassifyResult, error) {
		return api.ClassifyResult{Category: "digestive", Count: 0, Products: nil}, nil
	}

	require.NoError(t, f.controller.ShowProducts(context.Background(), convID, "a1"))

	assert.Empty(t, f.products.List(convID), "zero results must not create an attachment")
	assert.Equal(t, NoProductsNotice, f.controller.Notice())

	require.Eventually(t, func() bool {
		return f.controller.Notice() == ""
	}, time.Second, time.Millisecond)
}

func TestShowProducts_StoredAttachmentReShownWithoutRefetch(t *testing.T) {
	f := newFixture(false)
	convID := "conv-p"
	f.messages.Append(model.Message{ID: "a1", ConversationID: convID, SenderID: model.SenderAssistant, Content: "try chamomile"})
	f.backend.classify = func(string) (api.ClassifyResult, error) {
		return api.ClassifyResult{Count: 1, Products: []model.Product{{ID: 1}}}, nil
	}

	require.NoError(t, f.controller.ShowProducts(context.Background(), convID, "a1"))
	f.controller.HideProducts(convID, "a1")
	require.True(t, f.controller.ShowStoredProducts(convID, "a1"))

	f.backend.mu.Lock()
	calls := len(f.backend.classifyCalls)
	f.backend.mu.Unlock()
	assert.Equal(t, 1, calls)

	att, _ := f.products.ForMessage(convID, "a1")
	assert.True(t, att.IsVisible)
}
