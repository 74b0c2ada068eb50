// Package serializer provides serializers with dynamic, per-request field
// selection.
//
// A FieldBuilder produces the full, ordered mapping of field name to
// descriptor. New narrows that mapping with a FieldSelection: fields not
// in the allow-list are removed first, then fields in the deny-list.
// Names that do not exist are ignored, so the narrowing never fails.
//
// # Example Usage
//
//	type User struct {
//	    ID       int    `json:"id"`
//	    Name     string `json:"name"`
//	    Email    string `json:"email"`
//	    Password string `json:"password" serializer:"writeonly"`
//	}
//
//	builder, _ := serializer.NewStructFieldBuilder(User{})
//
//	s, err := serializer.New(builder,
//	    serializer.WithSelection(serializer.ParseSelection(r.URL.Query())),
//	)
//	data, err := s.Encode(ctx, user)
//
// The allow-list distinguishes absent from empty: WithFields() with no
// names, or "?fields=" in a query, removes every field.
package serializer
