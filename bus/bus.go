// bus.go
package bus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// -----------------------------------------------------------------------------
// Tokens + Topics
// -----------------------------------------------------------------------------

// Token is a single element in a topic path. Tokens must be comparable
// values; in practice they are strings or integers. The two wildcard
// tokens below are only meaningful in subscription topics.
type Token = any

const (
	// SingleWildcard matches exactly one token at its level.
	SingleWildcard = "+"
	// MultiWildcard matches zero or more trailing tokens.
	MultiWildcard = "#"
)

// Topic is a sequence of tokens.
type Topic []Token

func (t Topic) Len() int       { return len(t) }
func (t Topic) At(i int) Token { return t[i] }

// Append returns a new Topic with the extra tokens added; the receiver is
// never mutated, so derived topics cannot alias each other.
func (t Topic) Append(tokens ...Token) Topic {
	out := make(Topic, 0, len(t)+len(tokens))
	out = append(out, t...)
	return append(out, tokens...)
}

// T builds a Topic, panicking if any token is not a supported type.
// Composite or non-comparable tokens would corrupt the routing trie.
func T(tokens ...Token) Topic {
	for _, tok := range tokens {
		if !validToken(tok) {
			panic("bus: topic token must be a string, integer, or bool")
		}
	}
	return Topic(tokens)
}

func validToken(tok Token) bool {
	switch tok.(type) {
	case string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, bool:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

// CanReply reports whether the sender asked for a reply.
func (m *Message) CanReply() bool { return len(m.ReplyTo) > 0 }

// ErrSubscriptionClosed is returned by RequestWait when the reply
// subscription is torn down before a reply arrives.
var ErrSubscriptionClosed = errors.New("bus: subscription closed")

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	bus   *Bus
	conn  *Connection // owning connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Trie node
// -----------------------------------------------------------------------------

type node struct {
	children map[Token]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok Token) *node {
	if n.children == nil {
		return nil
	}
	return n.children[tok]
}

func (n *node) ensureChild(tok Token) *node {
	if n.children == nil {
		n.children = make(map[Token]*node)
	}
	child, ok := n.children[tok]
	if !ok {
		child = &node{}
		n.children[tok] = child
	}
	return child
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.RWMutex
	root *node
	qLen int
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	return &Bus{
		root: &node{},
		qLen: queueLen,
	}
}

// NewMessage builds a message for publication on this bus.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// addSubscription inserts a subscription into the trie. Wildcard tokens
// are stored as ordinary trie nodes; matching happens at publish time.
func (b *Bus) addSubscription(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range topic {
		n = n.ensureChild(tok)
	}
	n.subs = append(n.subs, sub)

	// Deliver any retained messages whose exact topic matches the
	// subscription, expanding wildcards against the stored paths.
	var retained []*Message
	collectRetained(b.root, topic, &retained)
	for _, msg := range retained {
		select {
		case sub.ch <- msg:
		default:
		}
	}
}

// collectRetained gathers retained messages under n matching the remaining
// subscription tokens.
func collectRetained(n *node, pattern Topic, out *[]*Message) {
	if len(pattern) == 0 {
		if n.retained != nil {
			*out = append(*out, n.retained)
		}
		return
	}
	switch pattern[0] {
	case MultiWildcard:
		collectSubtree(n, out)
	case SingleWildcard:
		for tok, child := range n.children {
			if tok == SingleWildcard || tok == MultiWildcard {
				continue
			}
			collectRetained(child, pattern[1:], out)
		}
	default:
		if child := n.child(pattern[0]); child != nil {
			collectRetained(child, pattern[1:], out)
		}
	}
}

// collectSubtree gathers every retained message at n and below.
func collectSubtree(n *node, out *[]*Message) {
	if n.retained != nil {
		*out = append(*out, n.retained)
	}
	for tok, child := range n.children {
		if tok == SingleWildcard || tok == MultiWildcard {
			continue
		}
		collectSubtree(child, out)
	}
}

// Publish delivers a message to all matching subscribers and updates the
// retained entry for its topic.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.matchSubs(b.root, msg.Topic, msg)

	if msg.Retained {
		n := b.root
		for _, tok := range msg.Topic {
			n = n.ensureChild(tok)
		}
		if msg.Payload == nil {
			n.retained = nil // clear
		} else {
			n.retained = msg
		}
	}
}

// matchSubs walks the trie delivering msg to every subscription whose
// pattern matches the remaining topic tokens.
func (b *Bus) matchSubs(n *node, remaining Topic, msg *Message) {
	// '#' matches the remainder, including an empty one.
	if hash := n.child(MultiWildcard); hash != nil {
		b.deliverAll(hash.subs, msg)
	}
	if len(remaining) == 0 {
		b.deliverAll(n.subs, msg)
		return
	}
	tok := remaining[0]
	if child := n.child(tok); child != nil {
		b.matchSubs(child, remaining[1:], msg)
	}
	if plus := n.child(SingleWildcard); plus != nil {
		b.matchSubs(plus, remaining[1:], msg)
	}
}

func (b *Bus) deliverAll(subs []*Subscription, msg *Message) {
	for _, sub := range subs {
		select {
		case sub.ch <- msg:
		default:
			// drop oldest if queue full
			<-sub.ch
			sub.ch <- msg
		}
	}
}

// unsubscribe removes a subscription from the trie.
func (b *Bus) unsubscribe(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	var stack []*node
	for _, t := range topic {
		if n.children == nil {
			return
		}
		child, ok := n.children[t]
		if !ok {
			return
		}
		stack = append(stack, n)
		n = child
	}

	// Remove subscription.
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}

	// Prune empty nodes.
	for i := len(topic) - 1; i >= 0; i-- {
		parent := stack[i]
		key := topic[i]
		child := parent.children[key]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, key)
		} else {
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus    *Bus
	subs   []*Subscription
	mu     sync.Mutex
	id     string // used to namespace reply topics
	reqSeq atomic.Uint32
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{
		bus: b,
		id:  id,
	}
}

// NewMessage builds a message for publication via this connection.
func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) {
	c.bus.Publish(msg)
}

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		bus:   c.bus,
		conn:  c,
	}
	c.bus.addSubscription(topic, sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription owned by this connection.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub.topic, sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(sub.ch)
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub.topic, sub)
		close(sub.ch)
	}
}

// -----------------------------------------------------------------------------
// Request–Reply
// -----------------------------------------------------------------------------

// Request stamps msg with a fresh ReplyTo topic, subscribes to it, and
// publishes the request. The caller owns the returned subscription and
// must Unsubscribe once done with it.
func (c *Connection) Request(msg *Message) *Subscription {
	msg.ReplyTo = Topic{"_reply", c.id, int(c.reqSeq.Add(1))}
	sub := c.Subscribe(msg.ReplyTo)
	c.Publish(msg)
	return sub
}

// RequestWait publishes the request and blocks for the first reply or
// context cancellation.
func (c *Connection) RequestWait(ctx context.Context, msg *Message) (*Message, error) {
	sub := c.Request(msg)
	defer c.Unsubscribe(sub)

	select {
	case reply, ok := <-sub.Channel():
		if !ok {
			return nil, ErrSubscriptionClosed
		}
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Reply answers a request on its ReplyTo topic. Messages without a
// ReplyTo are ignored.
func (c *Connection) Reply(req *Message, payload any, retained bool) {
	if !req.CanReply() {
		return
	}
	c.Publish(&Message{Topic: req.ReplyTo, Payload: payload, Retained: retained})
}
