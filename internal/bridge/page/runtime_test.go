package page

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webbridge/internal/bridge/protocol"
)

type recorder struct {
	mu   sync.Mutex
	sent []string
}

func (r *recorder) Send(_ context.Context, msg string) error {
	r.mu.Lock()
	r.sent = append(r.sent, msg)
	r.mu.Unlock()
	return nil
}

func (r *recorder) requests(t *testing.T) []protocol.Request {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]protocol.Request, 0, len(r.sent))
	for _, s := range r.sent {
		req, err := protocol.DecodeRequest(s)
		require.NoError(t, err)
		out = append(out, req)
	}
	return out
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg string) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func reply(t *testing.T, id string, ret any) string {
	t.Helper()
	resp, err := protocol.NewResponse(id, ret)
	require.NoError(t, err)
	text, err := protocol.EncodeResponse(resp)
	require.NoError(t, err)
	return text
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.NotEqual(t, id, GenerateID())
}

func TestInvokeAndReply(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	rt := New(rec)

	call, err := rt.Invoke(ctx, "add", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, rt.Pending())

	reqs := rec.requests(t)
	require.Len(t, reqs, 1)
	assert.Equal(t, call.ID, reqs[0].ID)
	assert.Equal(t, "add", reqs[0].Name)

	select {
	case <-call.Done():
		t.Fatal("call completed before reply")
	default:
	}

	rt.OnMessage(reply(t, call.ID, 5))

	var sum float64
	require.NoError(t, call.Decode(ctx, &sum))
	assert.Equal(t, 5.0, sum)
	assert.Equal(t, 0, rt.Pending())
}

func TestOutOfOrderReplies(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	rt := New(rec)

	first, err := rt.Invoke(ctx, "slow")
	require.NoError(t, err)
	second, err := rt.Invoke(ctx, "fast")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	rt.OnMessage(reply(t, second.ID, "fast-result"))
	rt.OnMessage(reply(t, first.ID, "slow-result"))

	var a, b string
	require.NoError(t, first.Decode(ctx, &a))
	require.NoError(t, second.Decode(ctx, &b))
	assert.Equal(t, "slow-result", a)
	assert.Equal(t, "fast-result", b)
}

func TestUnknownAndMalformedRepliesDiscarded(t *testing.T) {
	ctx := context.Background()
	rt := New(&recorder{})

	call, err := rt.Invoke(ctx, "add")
	require.NoError(t, err)

	rt.OnMessage(reply(t, "not-a-pending-id", 1))
	rt.OnMessage(`bind:{"id":`)
	rt.OnMessage(`bind:{"ret":1}`)
	assert.Equal(t, 1, rt.Pending())

	rt.OnMessage(reply(t, call.ID, nil))
	ret, err := call.Await(ctx)
	require.NoError(t, err)
	assert.True(t, protocol.IsNull(ret))

	// a second reply with the same id is now unknown
	rt.OnMessage(reply(t, call.ID, 1))
	assert.Equal(t, 0, rt.Pending())
}

func TestFaultRejects(t *testing.T) {
	ctx := context.Background()
	rt := New(&recorder{})

	call, err := rt.Invoke(ctx, "explode")
	require.NoError(t, err)

	text, err := protocol.EncodeResponse(protocol.NewFaultResponse(call.ID, protocol.CodeHandlerFault, "boom"))
	require.NoError(t, err)
	rt.OnMessage(text)

	var out int
	err = call.Decode(ctx, &out)
	var fault *protocol.Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, protocol.CodeHandlerFault, fault.Code)
	assert.Equal(t, "boom", fault.Message)
}

func TestAwaitCancelKeepsPending(t *testing.T) {
	rt := New(&recorder{})
	call, err := rt.Invoke(context.Background(), "never")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = call.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, rt.Pending())
}

func TestConcurrentInvokeUniqueIDs(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	rt := New(rec)

	const n = 200
	var wg sync.WaitGroup
	calls := make([]*Call, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			call, err := rt.Invoke(ctx, "echo", i)
			assert.NoError(t, err)
			calls[i] = call
		}(i)
	}
	wg.Wait()
	assert.Equal(t, n, rt.Pending())

	seen := make(map[string]bool, n)
	for _, req := range rec.requests(t) {
		assert.False(t, seen[req.ID], "duplicate id %s", req.ID)
		seen[req.ID] = true
		var i int
		req.Args.Decode(0, &i)
		rt.OnMessage(reply(t, req.ID, i))
	}

	for i, call := range calls {
		var got int
		require.NoError(t, call.Decode(ctx, &got))
		assert.Equal(t, i, got)
	}
	assert.Equal(t, 0, rt.Pending())
}

func TestIDCollisionRegenerates(t *testing.T) {
	ids := []string{"same", "same", "other"}
	var mu sync.Mutex
	next := func() string {
		mu.Lock()
		defer mu.Unlock()
		id := ids[0]
		if len(ids) > 1 {
			ids = ids[1:]
		}
		return id
	}
	rt := New(&recorder{}, WithIDGenerator(next))

	a, err := rt.Invoke(context.Background(), "f")
	require.NoError(t, err)
	b, err := rt.Invoke(context.Background(), "f")
	require.NoError(t, err)
	assert.Equal(t, "same", a.ID)
	assert.Equal(t, "other", b.ID)

	fixed := New(&recorder{}, WithIDGenerator(func() string { return "fixed" }))
	_, err = fixed.Invoke(context.Background(), "f")
	require.NoError(t, err)
	_, err = fixed.Invoke(context.Background(), "f")
	assert.ErrorIs(t, err, ErrIDExhausted)
}

func TestSendFailureReleasesCall(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(fmt.Errorf("closed"))
	rt := New(sender)

	_, err := rt.Invoke(context.Background(), "add", 1)
	assert.Error(t, err)
	assert.Equal(t, 0, rt.Pending())
	sender.AssertExpectations(t)
}

func TestListeners(t *testing.T) {
	rec := &recorder{}
	rt := New(rec)

	var got []string
	remove := rt.AddListener(func(msg string) { got = append(got, msg) })

	rt.OnMessage("focus")
	rt.OnMessage(reply(t, "x", 1))
	remove()
	remove()
	rt.OnMessage("blur")
	assert.Equal(t, []string{"focus"}, got)

	require.NoError(t, rt.SendMessage(context.Background(), "hello host"))
	assert.Error(t, rt.SendMessage(context.Background(), "bind:spoof"))
	assert.Equal(t, []string{"hello host"}, rec.sent)
}
