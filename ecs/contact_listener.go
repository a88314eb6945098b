package ecs

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayer/ecs/component"
)

// ContactPhase tells whether a pair started or stopped touching.
type ContactPhase uint8

const (
	ContactBegin ContactPhase = iota
	ContactEnd
)

func (p ContactPhase) String() string {
	if p == ContactEnd {
		return "end"
	}
	return "begin"
}

// Contact is a classified gameplay notification. A carries the first
// category of the matching rule, B the second.
type Contact struct {
	Name      string
	Phase     ContactPhase
	A         Entity
	B         Entity
	CategoryA component.Category
	CategoryB component.Category
	BodyA     *cp.Body
	BodyB     *cp.Body
}

// ContactSink receives notifications once per step, after the solver ran.
type ContactSink interface {
	OnContact(c Contact)
}

// ContactSinkFunc adapts a function to ContactSink.
type ContactSinkFunc func(c Contact)

func (f ContactSinkFunc) OnContact(c Contact) { f(c) }

// ContactRule names the notification raised when categories A and B touch.
type ContactRule struct {
	A    component.Category
	B    component.Category
	Name string
}

const (
	ContactPlayerHazard = "player_touched_hazard"
	ContactPlayerPickup = "player_touched_pickup"
	ContactPropHazard   = "prop_touched_hazard"
	ContactPlayerLanded = "player_landed"
)

// DefaultContactRules is the platformer rule set.
var DefaultContactRules = []ContactRule{
	{A: component.CategoryPlayer, B: component.CategoryHazard, Name: ContactPlayerHazard},
	{A: component.CategoryPlayer, B: component.CategoryPickup, Name: ContactPlayerPickup},
	{A: component.CategoryProp, B: component.CategoryHazard, Name: ContactPropHazard},
	{A: component.CategoryPlayerFeet, B: component.CategoryTerrain, Name: ContactPlayerLanded},
}

type categoryPair struct {
	a component.Category
	b component.Category
}

type pairKey struct {
	a    Entity
	b    Entity
	name string
}

// pairState tracks one classified pair. overlaps counts touching shape
// pairs; notified is what sinks were last told.
type pairState struct {
	contact  Contact
	overlaps int
	notified bool
	queued   bool
}

// ContactListener receives Chipmunk begin/separate callbacks, classifies
// them by shape category and dispatches notifications to its sinks.
type ContactListener struct {
	world *PhysicsWorld
	rules map[categoryPair]string
	sinks []ContactSink

	pairs  map[pairKey]*pairState
	queued []pairKey

	grounded map[Entity]int
	begins   int
	ends     int
}

// NewContactListener attaches a listener to world. Nil rules selects
// DefaultContactRules.
func NewContactListener(world *PhysicsWorld, rules []ContactRule) *ContactListener {
	if world == nil {
		panic("contacts: nil world")
	}
	if rules == nil {
		rules = DefaultContactRules
	}
	l := &ContactListener{
		world:    world,
		rules:    make(map[categoryPair]string, len(rules)),
		pairs:    make(map[pairKey]*pairState),
		grounded: make(map[Entity]int),
	}
	for _, r := range rules {
		l.rules[categoryPair{a: r.A, b: r.B}] = r.Name
	}
	world.contacts = l
	if world.space != nil {
		l.install(world.space)
	}
	return l
}

// Subscribe adds a sink. Sinks are called in subscription order.
func (l *ContactListener) Subscribe(sink ContactSink) {
	if l == nil || sink == nil {
		return
	}
	l.sinks = append(l.sinks, sink)
}

// Grounded reports whether the entity's foot sensor touches terrain.
func (l *ContactListener) Grounded(e Entity) bool {
	if l == nil {
		return false
	}
	return l.grounded[e] > 0
}

// Counts returns how many begin and end callbacks the solver raised.
func (l *ContactListener) Counts() (begins, ends int) {
	if l == nil {
		return 0, 0
	}
	return l.begins, l.ends
}

func (l *ContactListener) install(space *cp.Space) {
	cats := component.Categories()
	for i, a := range cats {
		for _, b := range cats[i:] {
			h := space.NewCollisionHandler(a.CollisionType(), b.CollisionType())
			h.BeginFunc = l.beginFunc
			h.SeparateFunc = l.separateFunc
		}
	}
}

func (l *ContactListener) beginFunc(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
	a, b := arb.Shapes()
	l.onContactBegin(a, b)
	return true
}

func (l *ContactListener) separateFunc(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
	a, b := arb.Shapes()
	l.onContactEnd(a, b)
}

func (l *ContactListener) onContactBegin(a, b *cp.Shape) {
	l.begins++
	c, _, ok := l.classify(a, b, ContactBegin)
	if !ok {
		return
	}
	if c.Name == ContactPlayerLanded {
		l.grounded[c.A]++
	}
	k := pairKey{a: c.A, b: c.B, name: c.Name}
	st, ok := l.pairs[k]
	if !ok {
		st = &pairState{}
		l.pairs[k] = st
	}
	st.contact = c
	st.overlaps++
	l.queue(k, st)
}

// onContactEnd ignores pairs whose entities are gone. Pairs separated
// because one side is being removed only release listener-owned counters;
// gameplay already reacted to that entity.
func (l *ContactListener) onContactEnd(a, b *cp.Shape) {
	l.ends++
	c, removing, ok := l.classify(a, b, ContactEnd)
	if !ok {
		return
	}
	if c.Name == ContactPlayerLanded {
		if n := l.grounded[c.A] - 1; n > 0 {
			l.grounded[c.A] = n
		} else {
			delete(l.grounded, c.A)
		}
	}
	if removing {
		return
	}
	k := pairKey{a: c.A, b: c.B, name: c.Name}
	st, ok := l.pairs[k]
	if !ok || st.overlaps == 0 {
		return
	}
	st.contact = c
	st.overlaps--
	l.queue(k, st)
}

func (l *ContactListener) classify(a, b *cp.Shape, phase ContactPhase) (c Contact, removing bool, ok bool) {
	if a == nil || b == nil {
		return Contact{}, false, false
	}
	catA, catB := component.CategoryOf(a), component.CategoryOf(b)
	name, ok := l.rules[categoryPair{a: catA, b: catB}]
	if !ok {
		name, ok = l.rules[categoryPair{a: catB, b: catA}]
		if !ok {
			return Contact{}, false, false
		}
		a, b = b, a
		catA, catB = catB, catA
	}

	bindA, ok := l.world.FindEntity(a.Body())
	if !ok {
		return Contact{}, false, false
	}
	bindB, ok := l.world.FindEntity(b.Body())
	if !ok {
		return Contact{}, false, false
	}
	c = Contact{
		Name:      name,
		Phase:     phase,
		A:         bindA.Entity,
		B:         bindB.Entity,
		CategoryA: catA,
		CategoryB: catB,
		BodyA:     bindA.Body,
		BodyB:     bindB.Body,
	}
	return c, bindA.removing || bindB.removing, true
}

// queue records the pair for the next flush, once, at its first detection.
func (l *ContactListener) queue(k pairKey, st *pairState) {
	if st.queued {
		return
	}
	st.queued = true
	l.queued = append(l.queued, k)
}

// flush tells sinks about every pair whose touching state differs from what
// they were last told. A begin and end inside one step cancel out.
func (l *ContactListener) flush() {
	if l == nil || len(l.queued) == 0 {
		return
	}
	keys := l.queued
	l.queued = nil

	batch := make([]Contact, 0, len(keys))
	for _, k := range keys {
		st, ok := l.pairs[k]
		if !ok {
			continue
		}
		st.queued = false
		touching := st.overlaps > 0
		if !touching {
			delete(l.pairs, k)
		}
		if touching == st.notified {
			continue
		}
		st.notified = touching
		c := st.contact
		c.Phase = ContactEnd
		if touching {
			c.Phase = ContactBegin
		}
		batch = append(batch, c)
	}

	for _, c := range batch {
		for _, s := range l.sinks {
			s.OnContact(c)
		}
	}
}

// forget drops every counter and pair involving e.
func (l *ContactListener) forget(e Entity) {
	if l == nil {
		return
	}
	delete(l.grounded, e)
	for k := range l.pairs {
		if k.a == e || k.b == e {
			delete(l.pairs, k)
		}
	}
}

func (l *ContactListener) reset() {
	l.queued = nil
	clear(l.pairs)
	clear(l.grounded)
	l.begins, l.ends = 0, 0
}
