// Package helpers implements the page template helpers independently of the
// template engine.
//
// Block helpers take an explicit *Branches carrying the renderings of the
// block and of its inverse section. A nil *Branches means the helper was used
// inline and they render the empty string.
//
// Example usage:
//
//	b := &helpers.Branches{
//	    Fn:      func() string { return "yes" },
//	    Inverse: func() string { return "no" },
//	}
//
//	helpers.Is(3, 3.0, b)                     // "yes"
//	out, err := helpers.Compare(5, ">", 3, b) // "yes", nil
//	_, err = helpers.Compare(5, "x", 3, b)    // ErrUnknownOperator
//
//	helpers.FirstN([]string{"a", "b", "c"}, 2) // [a b]
//	helpers.Link("http://x.com/p#old", "sec2") // "http://x.com/p#sec2"
//	helpers.TimeAgo(then, "fr", time.Now())   // "Il y a 3 jours"
//
// Helper groups:
//   - Conditionals: Any, Empty, LengthEqual, Contains, And, Or, Is, Isnt,
//     Gt, Gte, Lt, Lte, IfEven, IfNth, In, IsArray, IfAny, Compare
//   - Sequences: First, FirstN, Last, LastN, After, Before, Array
//   - Loop: Repeat
//   - Formatting: TimeAgo, FormatDate, Link, Serialize, Slug, Target
//
// Sequence helpers never modify their input and treat a missing or
// non-sequence input as empty.
package helpers
