package component

// Details summarizes a component tree for document listings.
type Details struct {
	Subcomponents int `json:"subComponents"`
}

// Summarize counts the tree below the component for its document row.
func Summarize(c Component) Details {
	return Details{Subcomponents: len(Resolve(c).Descendants())}
}

// Title is the display name of a node: its descriptor name, falling back to
// the kind's display name.
func Title(n *Node) string {
	if name := n.Component.Meta().Descriptors.Name; name != "" {
		return name
	}
	return n.Component.Kind().DisplayName()
}
