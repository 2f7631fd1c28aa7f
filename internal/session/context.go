package session

// Context is the persistence context of one unit of work: the identity map
// guaranteeing at most one in-memory representation per (entity, identifier)
// pair, plus the unique-key lookup index. A unit of work is single-threaded;
// the context performs no locking and must not be shared across goroutines.
type Context struct {
	holdersByKey map[EntityKey]*Holder
	byUniqueKey  map[UniqueKey]any
}

// NewContext constructs an empty persistence context.
func NewContext() *Context {
	return &Context{
		holdersByKey: make(map[EntityKey]*Holder),
		byUniqueKey:  make(map[UniqueKey]any),
	}
}

// EntityHolder returns the identity-map entry for key, or nil.
func (c *Context) EntityHolder(key EntityKey) *Holder {
	return c.holdersByKey[key]
}

// AddEntity registers a managed instance under key and returns its holder.
// When a proxy is already registered for the key, the holder keeps it; the
// proxy remains the canonical reference for attribute slots that saw it.
func (c *Context) AddEntity(key EntityKey, instance any) *Holder {
	h := c.holdersByKey[key]
	if h == nil {
		h = &Holder{key: key}
		c.holdersByKey[key] = h
	}
	h.entity = instance
	if h.proxy != nil && !h.proxy.Initialized() {
		h.proxy.attach(instance)
	}
	return h
}

// AddProxy registers a proxy for key. An existing proxy is preserved so every
// row resolving the same association observes one canonical stand-in.
func (c *Context) AddProxy(key EntityKey, p *Proxy) *Proxy {
	h := c.holdersByKey[key]
	if h == nil {
		h = &Holder{key: key}
		c.holdersByKey[key] = h
	}
	if h.proxy != nil {
		return h.proxy
	}
	h.proxy = p
	return p
}

// EntityByUniqueKey returns the instance registered under the unique key, or
// nil.
func (c *Context) EntityByUniqueKey(uk UniqueKey) any {
	return c.byUniqueKey[uk]
}

// AddEntityByUniqueKey registers an instance under its unique key so later
// rows in the same unit of work resolve it without a load.
func (c *Context) AddEntityByUniqueKey(uk UniqueKey, instance any) {
	if instance == nil {
		return
	}
	c.byUniqueKey[uk] = instance
}

// ProxyFor returns the canonical representation for an instance registered
// under key: the registered proxy when one exists, otherwise the instance.
func (c *Context) ProxyFor(key EntityKey, instance any) any {
	if h := c.holdersByKey[key]; h != nil && h.proxy != nil {
		return h.proxy
	}
	return instance
}

// ProxyForHolder returns the canonical representation of the holder's entity.
func (c *Context) ProxyForHolder(h *Holder) any {
	if h == nil {
		return nil
	}
	if h.proxy != nil {
		return h.proxy
	}
	return h.entity
}
