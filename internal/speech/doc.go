// Package speech renders calendar availability, events and preferences as
// single spoken sentences.
//
// All lists are joined with JoinList so that a spoken list reads the same
// everywhere: "A", "A and B", "A, B, and C".
package speech
