package schema

import "google.golang.org/genai"

// ToGemini renders the node as a Gemini response schema. Field order is
// carried through PropertyOrdering so the model emits keys as declared.
func (n Node) ToGemini() *genai.Schema {
	s := &genai.Schema{Description: n.Description}
	switch n.Kind {
	case KindString:
		s.Type = genai.TypeString
	case KindInteger:
		s.Type = genai.TypeInteger
	case KindArray:
		s.Type = genai.TypeArray
		if n.Items != nil {
			s.Items = n.Items.ToGemini()
		} else {
			s.Items = &genai.Schema{Type: genai.TypeString}
		}
		if n.MinItems > 0 {
			min := int64(n.MinItems)
			s.MinItems = &min
		}
	case KindObject:
		s.Type = genai.TypeObject
		s.Properties = make(map[string]*genai.Schema, len(n.Fields))
		for _, f := range n.Fields {
			s.Properties[f.Name] = f.Node.ToGemini()
			s.PropertyOrdering = append(s.PropertyOrdering, f.Name)
			if f.Required {
				s.Required = append(s.Required, f.Name)
			}
		}
	}
	return s
}
