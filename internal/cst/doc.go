// Package cst defines the concrete syntax tree produced by the parser.
//
// Every byte of the source belongs to exactly one leaf token, trivia and
// error spans included. Nodes own their children exclusively; there are no
// parent pointers. Upward lookups go through a ParentIndex, which is cheap
// to rebuild after each parse generation.
//
// Node identity is stable: the incremental engine moves untouched subtrees
// into the new tree as the same *Node values with the same IDs, only
// shifting their spans.
package cst
