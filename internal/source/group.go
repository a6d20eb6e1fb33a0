package source

import (
	"github.com/elliotchance/orderedmap/v2"
)

// Contact is one (full_name, email) pair listed under an employer.
type Contact struct {
	FullName string
	Email    string
}

// Grouped is the export with rows of the same employer collapsed. The legacy
// export repeats the employer row once per contact.
type Grouped struct {
	byID *orderedmap.OrderedMap[string, *groupEntry]
}

type groupEntry struct {
	node     Node
	contacts []Contact
}

// Item is one grouped employer.
type Item struct {
	Node     Node
	Contacts []Contact
}

// GroupUsers collapses nodes that share an id into the first of them, in
// first-seen order. Nodes missing id, full_name or email are dropped.
func GroupUsers(nodes []Node) *Grouped {
	g := &Grouped{byID: orderedmap.NewOrderedMap[string, *groupEntry]()}
	for _, n := range nodes {
		id, ok := n.Field("id")
		if !ok {
			continue
		}
		fullName, ok := n.Field("full_name")
		if !ok {
			continue
		}
		email, ok := n.Field("email")
		if !ok {
			continue
		}

		entry, ok := g.byID.Get(id)
		if !ok {
			entry = &groupEntry{node: n}
			g.byID.Set(id, entry)
		}
		entry.contacts = append(entry.contacts, Contact{FullName: fullName, Email: email})
	}
	return g
}

// Len returns the number of distinct employers.
func (g *Grouped) Len() int {
	return g.byID.Len()
}

// Items returns the grouped employers in first-seen order.
func (g *Grouped) Items() []Item {
	items := make([]Item, 0, g.byID.Len())
	for el := g.byID.Front(); el != nil; el = el.Next() {
		items = append(items, Item{Node: el.Value.node, Contacts: el.Value.contacts})
	}
	return items
}
