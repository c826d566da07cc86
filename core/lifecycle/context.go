package lifecycle

import (
	"time"

	"github.com/dmitrymomot/sessionkit/core/session"
)

// Context is the explicit per-request session state. It replaces ambient
// session globals: everything a request knows about its session lives here,
// and only the coordinator mutates it.
type Context struct {
	storeKey      string
	sess          *session.Session
	regeneratedAt time.Time
	dirty         bool
	destroyed     bool
}

// StoreKey returns the raw storage-layer key the payload lives under.
// The store key is not the session identifier; the two rotate independently.
func (c *Context) StoreKey() string {
	if c == nil {
		return ""
	}
	return c.storeKey
}

// Session returns the resolved session aggregate, nil after Destroy.
func (c *Context) Session() *session.Session {
	if c == nil {
		return nil
	}
	return c.sess
}

// RegeneratedAt returns when the store key was last rotated.
func (c *Context) RegeneratedAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.regeneratedAt
}

// SetData replaces the session's opaque payload and marks the context dirty.
// The change reaches the store when the caller hands the context to
// Coordinator.Save; IsDirty tells a request teardown whether that is needed.
func (c *Context) SetData(data []byte) {
	if c == nil || c.sess == nil {
		return
	}
	c.sess.SetData(data)
	c.dirty = true
}

// IsDirty reports whether the context carries unpersisted changes.
func (c *Context) IsDirty() bool { return c != nil && c.dirty }

// Destroyed reports whether the session was torn down.
func (c *Context) Destroyed() bool { return c != nil && c.destroyed }

// clear wipes the in-memory session state. Coordinator-only.
func (c *Context) clear() {
	c.sess = nil
	c.storeKey = ""
	c.dirty = false
	c.destroyed = true
}
