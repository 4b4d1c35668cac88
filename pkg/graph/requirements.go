package graph

// Requirements is the aggregate (needs, provides) view of a network, with
// optionality folded: a data node is optional in the aggregate view iff
// every outbound data->op edge referencing it carries Optional=true (no
// operation requires it compulsorily).
type Requirements struct {
	// Needs is the ordered, de-duplicated set of data names the network
	// as a whole consumes.
	Needs []string
	// Optional marks, by name, which entries of Needs are optional.
	Optional map[string]bool
	// Provides is the ordered, de-duplicated set of data names the
	// network as a whole produces.
	Provides []string
}

// Requirements derives the network's aggregate needs/provides: provides
// is the insertion-order union of each operation's OpProvides (falling
// back to Provides), needs is the insertion-order union of each
// operation's Needs with optionality folded and keyword/optional
// modifiers otherwise stripped from the aggregate view. Side-effect
// names are kept as-is.
func (n *Network) Requirements() Requirements {
	var provideOrder []string
	provideSeen := make(map[string]bool)

	var needOrder []string
	needSeen := make(map[string]bool)
	compulsory := make(map[string]bool)

	for _, name := range n.opOrder {
		node := n.opNodes[name]
		for _, p := range node.Op.ProvidesOf() {
			if !provideSeen[p.Name] {
				provideSeen[p.Name] = true
				provideOrder = append(provideOrder, p.Name)
			}
		}
		for _, need := range node.Op.NeedsOf() {
			if !needSeen[need.Name] {
				needSeen[need.Name] = true
				needOrder = append(needOrder, need.Name)
			}
			if !need.IsOptional() {
				compulsory[need.Name] = true
			}
		}
	}

	optional := make(map[string]bool, len(needOrder))
	for _, name := range needOrder {
		optional[name] = !compulsory[name]
	}

	return Requirements{Needs: needOrder, Optional: optional, Provides: provideOrder}
}
