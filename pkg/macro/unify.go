package macro

import "arkc/pkg/node"

// unify replaces, in a copy of body, every occurrence of a symbol mapped in
// params by the mapped node (structural copy), and inlines the elements of
// a spread parameter's list expansion at the spread's position. params maps
// a parameter name to the argument node it was bound to; a spread parameter
// is bound to a List (the remaining call arguments, prefixed with the
// ListNode sentinel so unify can recognize and strip it).
func unify(params map[string]*node.Node, body *node.Node) (*node.Node, error) {
	switch body.Kind {
	case node.Symbol:
		if v, ok := params[body.Str]; ok {
			return v.Clone(), nil
		}
		return body.Clone(), nil

	case node.Spread:
		v, ok := params[body.Str]
		if !ok {
			return nil, errAt(body, "spread @%s has no bound argument", body.Str)
		}
		return v.Clone(), nil

	case node.List, node.Macro:
		children := make([]*node.Node, 0, len(body.Children))
		for _, c := range body.Children {
			if c.Kind == node.Spread {
				v, ok := params[c.Str]
				if !ok {
					return nil, errAt(c, "spread @%s has no bound argument", c.Str)
				}
				if v.Kind != node.List {
					return nil, errAt(c, "spread @%s must expand to a list, got %s", c.Str, v.Kind)
				}
				elems := v.Children
				if v.IsDataList() {
					elems = v.Children[1:]
				}
				for _, el := range elems {
					children = append(children, el.Clone())
				}
				continue
			}
			uc, err := unify(params, c)
			if err != nil {
				return nil, err
			}
			children = append(children, uc)
		}
		clone := body.Clone()
		clone.Children = children
		return clone, nil

	default:
		return body.Clone(), nil
	}
}
