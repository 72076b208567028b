package usecase

import (
	"context"
	"fmt"
	"time"

	"kala/internal/domain/chat"
	"kala/internal/domain/session"
	"kala/internal/pkg/metrics"
	"kala/internal/pkg/task"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher pushes appended chat messages to live subscribers of a session.
type Publisher interface {
	Publish(sessionID uuid.UUID, m chat.Message)
}

type SendResult struct {
	User  chat.Message  `json:"user"`
	Reply *chat.Message `json:"reply,omitempty"`
	// Pending is set when the reply is still scheduled.
	Pending bool `json:"pending"`
}

type ChatUsecase interface {
	History(ctx context.Context, id uuid.UUID) ([]chat.Message, error)
	Send(ctx context.Context, id uuid.UUID, req chat.Request, wait bool) (SendResult, error)
	QuickActions() []chat.QuickAction
}

type Chat struct {
	store   session.Store
	replies *task.Group
	locks   *SessionLocks
	pub     Publisher
	delay   time.Duration
	root    context.Context
	logger  *zap.Logger
	now     func() time.Time
}

type ChatOptions struct {
	Delay time.Duration
	// Root bounds replies scheduled without waiting. Defaults to Background.
	Root   context.Context
	Logger *zap.Logger
}

func NewChatUsecase(store session.Store, replies *task.Group, locks *SessionLocks, pub Publisher, opts ChatOptions) *Chat {
	if replies == nil {
		replies = task.NewGroup()
	}
	if locks == nil {
		locks = NewSessionLocks()
	}
	if opts.Root == nil {
		opts.Root = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Chat{
		store:   store,
		replies: replies,
		locks:   locks,
		pub:     pub,
		delay:   opts.Delay,
		root:    opts.Root,
		logger:  opts.Logger,
		now:     time.Now,
	}
}

func (u *Chat) QuickActions() []chat.QuickAction { return chat.QuickActions() }

func (u *Chat) History(ctx context.Context, id uuid.UUID) ([]chat.Message, error) {
	sess, err := u.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Messages, nil
}

// Send appends the user message and schedules the assistant reply after
// the configured delay. With wait the call blocks until the reply is
// appended, and cancelling ctx drops the reply.
func (u *Chat) Send(ctx context.Context, id uuid.UUID, req chat.Request, wait bool) (SendResult, error) {
	shown, input, isQuickAction, err := req.Prepare()
	if err != nil {
		return SendResult{}, err
	}

	userMsg, err := u.appendMessage(ctx, id, chat.NewMessage(shown, true, u.now()))
	if err != nil {
		return SendResult{}, err
	}

	reply := chat.Select(input, isQuickAction)
	delivered := make(chan chat.Message, 1)
	parent := u.root
	if wait {
		parent = ctx
	}

	t := u.replies.After(parent, id.String(), u.delay, func(tctx context.Context) {
		m, err := u.appendMessage(tctx, id, chat.NewMessage(reply.Text, false, u.now()))
		if err != nil {
			u.logger.Warn("chat reply not delivered", zap.String("session_id", id.String()), zap.Error(err))
			return
		}
		metrics.ChatReplies.WithLabelValues(reply.Rule).Inc()
		delivered <- m
	})

	if !wait {
		return SendResult{User: userMsg, Pending: true}, nil
	}

	<-t.Done()
	select {
	case m := <-delivered:
		return SendResult{User: userMsg, Reply: &m}, nil
	default:
	}
	metrics.ChatRepliesDropped.Inc()
	if err := ctx.Err(); err != nil {
		return SendResult{User: userMsg}, err
	}
	return SendResult{User: userMsg}, fmt.Errorf("%w: reply not delivered", ErrInternal)
}

// appendMessage re-reads the session under its lock so concurrent sends
// and replies never overwrite each other.
func (u *Chat) appendMessage(ctx context.Context, id uuid.UUID, m chat.Message) (chat.Message, error) {
	unlock := u.locks.Lock(id)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return chat.Message{}, err
	}
	sess, err := u.store.Get(ctx, id)
	if err != nil {
		return chat.Message{}, err
	}
	sess.Messages = append(sess.Messages, m)
	sess.UpdatedAt = m.Timestamp
	if err := u.store.Save(ctx, sess); err != nil {
		return chat.Message{}, err
	}
	if u.pub != nil {
		u.pub.Publish(id, m)
	}
	return m, nil
}
